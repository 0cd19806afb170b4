package dblayer

import (
	"sort"

	"newfriends/dbtypes"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortBy selects the roster ordering applied by LoadAll.
type SortBy string

const (
	// SortByName orders ascending by name under Korean collation.
	SortByName SortBy = "name"
	// SortByDate orders newest registration first.  The default.
	SortByDate SortBy = "date"
	// SortByAge orders youngest first.
	SortByAge SortBy = "age"
)

// Sentinel fill values for empty dates.  Registration dates sort descending,
// so "0000-00-00" places unregistered members last; birth dates also sort
// descending, so "9999-99-99" treats an unknown birth date as youngest and
// places it first.
const (
	emptyRegistrationDate = "0000-00-00"
	emptyBirthDate        = "9999-99-99"
)

var koreanCollator = collate.New(language.Korean)

// SortMembers orders the roster in place.  Date comparisons are plain string
// comparisons, which is exact for the YYYY-MM-DD format the roster stores.
func SortMembers(members []*dbtypes.Member, sortBy SortBy) {
	switch sortBy {
	case SortByName:
		sort.SliceStable(members, func(i, j int) bool {
			return koreanCollator.CompareString(members[i].Name, members[j].Name) < 0
		})
	case SortByAge:
		sort.SliceStable(members, func(i, j int) bool {
			return fillEmpty(members[i].BirthDate, emptyBirthDate) > fillEmpty(members[j].BirthDate, emptyBirthDate)
		})
	default:
		sort.SliceStable(members, func(i, j int) bool {
			return fillEmpty(members[i].RegistrationDate, emptyRegistrationDate) > fillEmpty(members[j].RegistrationDate, emptyRegistrationDate)
		})
	}
}

func fillEmpty(date, fill string) string {
	if date == "" {
		return fill
	}
	return date
}
