// Package week computes ISO 8601 week labels ("YYYY-Www") used to tag
// archived leaderboard snapshots.
package week

import (
	"fmt"
	"time"
)

const dayMillis = 86400000

// Label returns the ISO week label for the given date, e.g. "2024-W01".
// The date is normalized to UTC midnight, shifted to the Thursday of its ISO
// week, and the week number is counted from January 4 of that Thursday's
// year. Early-January dates whose Thursday falls before January 4 come out
// as week 00; archived labels only ever compare for equality, so the quirk
// is kept rather than corrected.
func Label(date time.Time) string {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	isoWeekday := int(d.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	d = d.AddDate(0, 0, 4-isoWeekday)

	yearStart := time.Date(d.Year(), time.January, 4, 0, 0, 0, 0, time.UTC)
	weekNum := (d.Sub(yearStart).Milliseconds()/dayMillis + 1 + 6) / 7

	return fmt.Sprintf("%d-W%02d", d.Year(), weekNum)
}

// Previous returns the label of the week seven days before the given date.
func Previous(date time.Time) string {
	return Label(date.AddDate(0, 0, -7))
}
