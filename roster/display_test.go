package roster

import (
	"testing"
	"time"

	"newfriends/dbtypes"
)

func TestAge(t *testing.T) {
	today := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		birthDate string
		want      int
	}{
		{"birthday already passed", "2019-07-20", 6},
		{"birthday is today", "2019-08-15", 6},
		{"birthday not yet reached", "2019-12-01", 5},
		{"same month later day", "2019-08-20", 5},
		{"january first", "2019-01-01", 6},
		{"december thirty first", "2019-12-31", 5},
		{"empty", "", 0},
		{"malformed", "not-a-date", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Age(tc.birthDate, today); got != tc.want {
				t.Errorf("Age(%q) = %d, want %d", tc.birthDate, got, tc.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	today := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	m := &dbtypes.Member{
		ID:         "1700000000000",
		Name:       "민율",
		Gender:     "남",
		BirthDate:  "2020-06-08",
		Photo:      "remote://members/1700000000000_1.jpg",
		Education1: "2025-06-08",
		Education3: "2025-06-22",
	}

	d := Project(m, today)

	if d.ID != m.ID || d.Name != m.Name || d.PhotoRef != m.Photo {
		t.Errorf("Projection lost identity fields; got %+v", d)
	}
	if d.Age != 5 {
		t.Errorf("Bad projected age; got %d, want 5", d.Age)
	}
	if d.Education != [3]bool{true, false, true} {
		t.Errorf("Bad education milestones; got %v, want [true false true]", d.Education)
	}
	if d.CompletionDate != "" {
		t.Errorf("Uncompleted member projected a completion date %q", d.CompletionDate)
	}
	if d.Member != m {
		t.Errorf("Projection should back-reference the stored record")
	}
}

func TestProjectCompleted(t *testing.T) {
	m := &dbtypes.Member{
		ID:         "1",
		Name:       "민율",
		Completion: "2025-06-29",
	}

	d := Project(m, time.Now())
	if d.CompletionDate != "2025-06-29" {
		t.Errorf("Bad completion date; got %q, want %q", d.CompletionDate, "2025-06-29")
	}
}
