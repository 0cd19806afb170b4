package dblayer

import (
	"testing"

	"newfriends/dbtypes"

	"github.com/google/go-cmp/cmp"
)

func names(members []*dbtypes.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Name)
	}
	return out
}

func TestSortByName(t *testing.T) {
	members := []*dbtypes.Member{
		{Name: "이시아"},
		{Name: "장정환"},
		{Name: "민율"},
	}

	SortMembers(members, SortByName)

	want := []string{"민율", "이시아", "장정환"}
	if diff := cmp.Diff(names(members), want); diff != "" {
		t.Errorf("Bad name order; diff (-got +want)\n%s", diff)
	}
}

func TestSortByDate(t *testing.T) {
	members := []*dbtypes.Member{
		{Name: "a", RegistrationDate: "2025-01-15"},
		{Name: "b", RegistrationDate: ""},
		{Name: "c", RegistrationDate: "2025-06-01"},
		{Name: "d", RegistrationDate: "2024-12-31"},
	}

	SortMembers(members, SortByDate)

	// Newest registration first; members without a registration date sort
	// strictly after all dated ones.
	want := []string{"c", "a", "d", "b"}
	if diff := cmp.Diff(names(members), want); diff != "" {
		t.Errorf("Bad date order; diff (-got +want)\n%s", diff)
	}
}

func TestSortByAge(t *testing.T) {
	members := []*dbtypes.Member{
		{Name: "a", BirthDate: "2018-05-18"},
		{Name: "b", BirthDate: ""},
		{Name: "c", BirthDate: "2020-06-08"},
	}

	SortMembers(members, SortByAge)

	// Youngest first; an unknown birth date counts as youngest of all.
	want := []string{"b", "c", "a"}
	if diff := cmp.Diff(names(members), want); diff != "" {
		t.Errorf("Bad age order; diff (-got +want)\n%s", diff)
	}
}

func TestSortDefaultIsDate(t *testing.T) {
	members := []*dbtypes.Member{
		{Name: "a", RegistrationDate: "2025-01-15"},
		{Name: "b", RegistrationDate: "2025-06-01"},
	}

	SortMembers(members, SortBy("bogus"))

	want := []string{"b", "a"}
	if diff := cmp.Diff(names(members), want); diff != "" {
		t.Errorf("Bad default order; diff (-got +want)\n%s", diff)
	}
}
