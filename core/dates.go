package core

import (
	"iter"
	"time"

	ex "cryptostats/data/extensions"
)

// dateLayout takes a four digit year and one or two digit month and day
const dateLayout = "2006-1-2"

var (
	EarliestDate = time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC)
	LatestDate   = time.Date(2021, time.May, 31, 0, 0, 0, 0, time.UTC)
)

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ex.InvalidInputf("date %q must be YYYY-MM-DD with a four digit year", s)
	}
	return t, nil
}

// MonthEnd returns the last day of t's month
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// ValidateRange parses both dates and checks they are inside the range the stored data covers
func ValidateRange(start, end string) (time.Time, time.Time, error) {
	s, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	e, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if s.Before(EarliestDate) {
		return time.Time{}, time.Time{}, ex.InvalidInputf("start date %s must be on or after %s", ex.FmtShort(s), ex.FmtShort(EarliestDate))
	}
	if e.After(LatestDate) {
		return time.Time{}, time.Time{}, ex.InvalidInputf("end date %s must be on or before %s", ex.FmtShort(e), ex.FmtShort(LatestDate))
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, ex.InvalidInputf("end date %s is before start date %s", ex.FmtShort(e), ex.FmtShort(s))
	}

	return s, e, nil
}

// MonthEndBoundaries yields (previous, current) month end pairs, starting at the month end of
// start and stopping once the previous month end reaches end
func MonthEndBoundaries(start, end time.Time) iter.Seq2[time.Time, time.Time] {
	return func(yield func(time.Time, time.Time) bool) {
		for cursor := MonthEnd(start); cursor.Before(end); {
			cur := MonthEnd(cursor.AddDate(0, 0, 1))
			if !yield(cursor, cur) {
				return
			}
			cursor = cur
		}
	}
}
