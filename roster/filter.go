package roster

import (
	"strings"
	"time"

	"newfriends/dbtypes"
)

// Filters is the compound filter configuration for the list view.  It is an
// ephemeral UI value; the filter panel edits a staged copy that only replaces
// the live value on explicit confirm.
type Filters struct {
	// ExcludeCompleted drops members with a completion date.
	ExcludeCompleted bool
	// ExcludeVisitors drops members whose category is exactly the visitor
	// marker.
	ExcludeVisitors bool
	// SinceRegistration drops members registered more than WindowMonths
	// whole calendar months ago, and members without a registration date.
	SinceRegistration bool
	// WindowMonths is 1, 2, or 3.
	WindowMonths int
}

func DefaultFilters() Filters {
	return Filters{WindowMonths: 1}
}

// Filter returns the members passing every active predicate, preserving the
// input order.  search matches case-insensitively against the name.
func Filter(displays []Display, f Filters, search string, now time.Time) []Display {
	search = strings.ToLower(search)

	var out []Display
	for _, d := range displays {
		if search != "" && !strings.Contains(strings.ToLower(d.Name), search) {
			continue
		}

		if f.ExcludeCompleted && d.CompletionDate != "" {
			continue
		}

		if f.ExcludeVisitors && d.Member.Category == dbtypes.CategoryVisitor {
			continue
		}

		if f.SinceRegistration {
			months, ok := MonthsSince(d.Member.RegistrationDate, now)
			if !ok || months > f.WindowMonths {
				continue
			}
		}

		out = append(out, d)
	}
	return out
}

// MonthsSince computes the whole-month difference between a YYYY-MM-DD date
// and now, ignoring the day of month.  ok is false for an empty or malformed
// date.
func MonthsSince(date string, now time.Time) (months int, ok bool) {
	if date == "" {
		return 0, false
	}

	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}

	return (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month()), true
}
