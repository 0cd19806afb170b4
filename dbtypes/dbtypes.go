// Package dbtypes holds the typed document schema shared by all components.
package dbtypes

import (
	"strconv"
	"strings"
	"time"
)

// Member is one child on the new-friends roster.  The struct is the complete
// schema of a roster document; fields outside it are never read or written.
// The firestore tags are the original Korean field names, kept so the
// collection stays readable by the older mobile and web clients.
type Member struct {
	ID               string `firestore:"id"`
	Photo            string `firestore:"사진"`
	Name             string `firestore:"이름"`
	Gender           string `firestore:"성별"`
	BirthDate        string `firestore:"생년월일"`
	Category         string `firestore:"구분"`
	RegistrationDate string `firestore:"등록일자"`
	District         string `firestore:"교구"`
	Contact1         string `firestore:"연락처1"`
	Contact2         string `firestore:"연락처2"`
	Address          string `firestore:"주소"`
	Education1       string `firestore:"교육1차"`
	Education2       string `firestore:"교육2차"`
	Education3       string `firestore:"교육3차"`
	Completion       string `firestore:"등반"`
	ReceivingTeacher string `firestore:"인수교사"`
	Notes            string `firestore:"메모"`
}

// CategoryVisitor marks members who only visited once and never registered.
const CategoryVisitor = "방문"

// NewMember constructs an empty, unsaved member.  IDs are minted from the
// current time in epoch milliseconds; the ID doubles as the document key and
// never changes after creation.
func NewMember(now time.Time) *Member {
	return &Member{
		ID: strconv.FormatInt(now.UnixMilli(), 10),
	}
}

// IsNew reports whether the member has never been saved.  A record is
// new/unsaved iff its name is empty at load time; the edit screen uses this
// to choose between its create and edit variants.
func (m *Member) IsNew() bool {
	return m.Name == ""
}

// RemoteRefPrefix tags a photo reference whose remainder is a path in blob
// storage.  A photo field without the tag is either empty or a local-only
// placeholder and must not be resolved.
const RemoteRefPrefix = "remote://"

// RemoteRefPath strips the remote tag from a photo reference, reporting
// whether the reference was tagged at all.
func RemoteRefPath(ref string) (string, bool) {
	if !strings.HasPrefix(ref, RemoteRefPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, RemoteRefPrefix), true
}

// Contact is the decoded form of the 연락처1/연락처2 fields, which pack a
// phone number and a relationship tag ("부", "모", "기타") into one string
// joined by a semicolon.
type Contact struct {
	Number   string
	Relation string
}

// ParseContact splits a stored contact string.  A string without the
// separator is a bare phone number with no relationship tag set.
func ParseContact(s string) Contact {
	number, relation, found := strings.Cut(s, ";")
	if !found {
		return Contact{Number: s}
	}
	return Contact{Number: number, Relation: relation}
}

// String re-encodes the contact for storage.
func (c Contact) String() string {
	if c.Relation == "" {
		return c.Number
	}
	return c.Number + ";" + c.Relation
}

// Session represents a staff log-in session.
type Session struct {
	Cookie  string    `firestore:"cookie"`
	Account string    `firestore:"account"`
	Expires time.Time `firestore:"expires"`
}
