// Package dblayer packages up most actual firestore accesses.
package dblayer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newfriends/dbtypes"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/iterator"
)

const (
	memberCollection  = "member"
	sessionCollection = "Sessions"
)

// BlobDeleter is the slice of the blob store the DB needs for best-effort
// photo cleanup when a member is deleted.
type BlobDeleter interface {
	Delete(ctx context.Context, path string) error
}

// NoopBlobDeleter satisfies BlobDeleter for binaries that never delete
// members and have no blob store to hand.
type NoopBlobDeleter struct{}

func (NoopBlobDeleter) Delete(ctx context.Context, path string) error { return nil }

type DB struct {
	firestoreClient *firestore.Client
	authService     *identitytoolkit.Service
	blobs           BlobDeleter

	// The roster is shared by the whole ministry staff; everyone signs in
	// to the same backend account.
	account string
}

func New(firestoreClient *firestore.Client, authService *identitytoolkit.Service, blobs BlobDeleter, account string) *DB {
	return &DB{
		firestoreClient: firestoreClient,
		authService:     authService,
		blobs:           blobs,
		account:         account,
	}
}

var (
	ErrPasswordMustNotBeEmpty = errors.New("password must not be empty")
	ErrWrongPassword          = errors.New("wrong password")
	ErrNameMustNotBeEmpty     = errors.New("name must not be empty")
)

// SignIn runs the password-based login process for the shared staff account,
// returning a session or an error.  The password is verified against the
// identity provider; no credentials are stored locally.
func (db *DB) SignIn(ctx context.Context, password string) (*dbtypes.Session, error) {
	if password == "" {
		return nil, ErrPasswordMustNotBeEmpty
	}

	_, err := db.authService.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             db.account,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code >= 400 && gerr.Code < 500 {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("while verifying password for %q: %w", db.account, err)
	}

	sessionCookieBytes := make([]byte, 32)
	if _, err := rand.Read(sessionCookieBytes); err != nil {
		return nil, fmt.Errorf("while generating session cookie: %w", err)
	}

	sessionCookie := base64.StdEncoding.EncodeToString(sessionCookieBytes)

	expires := time.Now().Add(18 * time.Hour)

	session := &dbtypes.Session{
		Cookie:  sessionCookie,
		Account: db.account,
		Expires: expires,
	}
	if _, _, err := db.firestoreClient.Collection(sessionCollection).Add(ctx, session); err != nil {
		return nil, fmt.Errorf("while storing session cookie: %w", err)
	}

	return session, nil
}

// AccountFromSessionCookie looks up a session by its cookie and returns the
// signed-in account, or "" when the session is missing or expired.
func (db *DB) AccountFromSessionCookie(ctx context.Context, cookie string) (string, error) {
	var sessionSnapshot *firestore.DocumentSnapshot
	sessionIter := db.firestoreClient.Collection(sessionCollection).Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		var err error
		sessionSnapshot, err = sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("while looking up session: %w", err)
		}

		// We only consider a single session.
		break
	}
	if sessionSnapshot == nil {
		// Session object must have been cleaned up due to expiration; user is not logged in.
		slog.InfoContext(ctx, "No logged-in user because there was no session object corresponding to the cookie in the database.")
		return "", nil
	}

	session := &dbtypes.Session{}
	if err := sessionSnapshot.DataTo(session); err != nil {
		return "", fmt.Errorf("while unmarshaling session: %w", err)
	}

	if session.Expires.Before(time.Now()) {
		// Session object is expired; user is not logged in.
		slog.InfoContext(ctx, "No logged-in user because the session object in the database was expired.")
		return "", nil
	}

	return session.Account, nil
}

// DeleteSession deletes a session by its cookie.
func (db *DB) DeleteSession(ctx context.Context, cookie string) error {
	sessionIter := db.firestoreClient.Collection(sessionCollection).Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		sessionSnapshot, err := sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while looking up session: %w", err)
		}

		_, err = sessionSnapshot.Ref.Delete(ctx, firestore.LastUpdateTime(sessionSnapshot.UpdateTime))
		if err != nil {
			return fmt.Errorf("while deleting session: %w", err)
		}
	}

	return nil
}

// LoadAll fetches every member document, defaults missing fields to "", and
// returns the roster ordered according to sortBy.  There is no retry; the
// caller decides how to surface a failed load.
func (db *DB) LoadAll(ctx context.Context, sortBy SortBy) ([]*dbtypes.Member, error) {
	var members []*dbtypes.Member

	memberIter := db.firestoreClient.Collection(memberCollection).Documents(ctx)
	defer memberIter.Stop()
	for {
		memberSnapshot, err := memberIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating members: %w", err)
		}

		member := &dbtypes.Member{}
		if err := memberSnapshot.DataTo(member); err != nil {
			return nil, fmt.Errorf("while unmarshaling member %s: %w", memberSnapshot.Ref.ID, err)
		}

		members = append(members, member)
	}

	SortMembers(members, sortBy)

	return members, nil
}

// Save upserts the full member document keyed by its ID.  Overwrite
// semantics: there is no partial update and no version check, so concurrent
// saves follow last write wins.
func (db *DB) Save(ctx context.Context, member *dbtypes.Member) error {
	if member.Name == "" {
		return ErrNameMustNotBeEmpty
	}

	if _, err := db.firestoreClient.Collection(memberCollection).Doc(member.ID).Set(ctx, member); err != nil {
		return fmt.Errorf("while saving member %s: %w", member.ID, err)
	}

	return nil
}

// Delete removes the member document, then deletes the photo blob as a
// best-effort follow-up.  The document deletion result is authoritative;
// photo cleanup failures are logged, not surfaced.
func (db *DB) Delete(ctx context.Context, id, photoRef string) error {
	if _, err := db.firestoreClient.Collection(memberCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting member %s: %w", id, err)
	}

	if path, ok := dbtypes.RemoteRefPath(photoRef); ok {
		if err := db.blobs.Delete(ctx, path); err != nil {
			slog.ErrorContext(ctx, "Failed to delete photo blob for removed member",
				slog.String("member", id), slog.String("path", path), slog.Any("err", err))
		}
	}

	return nil
}
