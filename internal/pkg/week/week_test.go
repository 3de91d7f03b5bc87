package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"mid year", date(2024, time.June, 12), "2024-W24"},
		{"first monday of 2024", date(2024, time.January, 1), "2024-W01"},
		{"last day of 2023 is a sunday", date(2023, time.December, 31), "2023-W52"},
		{"early january before first thursday", date(2025, time.January, 1), "2025-W00"},
		{"thursday anchors its own week", date(2024, time.January, 4), "2024-W01"},
		{"time of day is ignored", time.Date(2024, time.June, 12, 23, 59, 59, 0, time.UTC), "2024-W24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.in))
		})
	}
}

func TestLabelStableWithinDay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Unix(rapid.Int64Range(0, 4102444800).Draw(t, "unix"), 0).UTC()
		morning := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 1, 0, time.UTC)
		evening := time.Date(base.Year(), base.Month(), base.Day(), 23, 59, 59, 0, time.UTC)
		if Label(morning) != Label(evening) {
			t.Fatalf("label changed within one day: %s vs %s", Label(morning), Label(evening))
		}
	})
}

func TestPreviousIsSevenDaysBack(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := time.Unix(rapid.Int64Range(0, 4102444800).Draw(t, "unix"), 0).UTC()
		if Previous(d) != Label(d.AddDate(0, 0, -7)) {
			t.Fatalf("Previous(%v) != Label of the date a week earlier", d)
		}
	})
}

func TestLabelFormat(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := time.Unix(rapid.Int64Range(0, 4102444800).Draw(t, "unix"), 0).UTC()
		label := Label(d)
		assert.Regexp(t, `^\d{4}-W\d{2,}$`, label)
	})
}
