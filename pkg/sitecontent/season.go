package sitecontent

import "time"

// SeasonRollover is the month/day on which the "current season" advances to
// the new calendar year. The site historically used several slightly
// different cutoffs; March 1 is the canonical rule, late enough that
// postseason content still resolves to the season it belongs to.
var SeasonRollover = struct {
	Month time.Month
	Day   int
}{time.March, 1}

// CurrentSeason computes the season year for a given instant. It is the only
// place the season is derived from the clock; every writer, manifest and
// proxy call takes the season as an explicit parameter computed once at the
// boundary.
func CurrentSeason(now time.Time) int {
	now = now.UTC()
	rollover := time.Date(now.Year(), SeasonRollover.Month, SeasonRollover.Day, 0, 0, 0, 0, time.UTC)
	if now.Before(rollover) {
		return now.Year() - 1
	}
	return now.Year()
}
