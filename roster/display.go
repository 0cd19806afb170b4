// Package roster derives the list view from stored members and orchestrates
// loading, filtering, and editing.
package roster

import (
	"time"

	"newfriends/dbtypes"
)

// Display is the list-row projection of one member.  Purely derived, never
// persisted.
type Display struct {
	ID        string
	Name      string
	Gender    string
	Age       int
	BirthDate string
	PhotoRef  string

	// Education reports, per milestone, whether the milestone date is set.
	Education [3]bool

	// CompletionDate is the completion field verbatim; "" means not
	// completed.  A completed member's row shows the starred date instead
	// of the three education checkboxes.
	CompletionDate string

	// Member back-references the stored record for edit round-tripping.
	Member *dbtypes.Member
}

// Project maps one stored member to its display form.  Pure; today only
// feeds the age calculation.
func Project(m *dbtypes.Member, today time.Time) Display {
	return Display{
		ID:        m.ID,
		Name:      m.Name,
		Gender:    m.Gender,
		Age:       Age(m.BirthDate, today),
		BirthDate: m.BirthDate,
		PhotoRef:  m.Photo,
		Education: [3]bool{
			m.Education1 != "",
			m.Education2 != "",
			m.Education3 != "",
		},
		CompletionDate: m.Completion,
		Member:         m,
	}
}

// Age computes the calendar age for a YYYY-MM-DD birth date: the year
// difference, less one if the birthday hasn't occurred yet this year.  An
// empty or malformed birth date yields 0.
func Age(birthDate string, today time.Time) int {
	if birthDate == "" {
		return 0
	}

	birth, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return 0
	}

	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
