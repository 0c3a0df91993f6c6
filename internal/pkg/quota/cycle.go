package quota

import (
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayKey returns the UTC calendar day a daily counter belongs to.
func DayKey(now time.Time) string {
	return now.UTC().Format(dayKeyLayout)
}

// NextDailyReset returns the next UTC midnight after now, when daily token
// counters logically reset.
func NextDailyReset(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// CycleStart computes the start of the billing cycle containing now. With a
// subscription anchor the cycle starts on the most recent day-of-month equal
// to the anchor's day (clamped for short months, so an anchor on the 31st
// starts February's cycle on the 28th/29th). Without an anchor the cycle is
// the plain calendar month. This single rule is used everywhere a cycle is
// needed; no code path may re-derive it differently.
func CycleStart(anchor *time.Time, now time.Time) time.Time {
	u := now.UTC()
	if anchor == nil {
		return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	day := anchor.UTC().Day()
	start := clampedDate(u.Year(), u.Month(), day)
	if start.After(u) {
		year, month := prevMonth(u.Year(), u.Month())
		start = clampedDate(year, month, day)
	}
	return start
}

// NextCycleStart returns the first instant of the cycle after the one
// containing now. Rejection responses carry it as the retry time.
func NextCycleStart(anchor *time.Time, now time.Time) time.Time {
	cur := CycleStart(anchor, now)
	year, month := nextMonth(cur.Year(), cur.Month())
	day := 1
	if anchor != nil {
		day = anchor.UTC().Day()
	}
	return clampedDate(year, month, day)
}

// CycleKey is the stable identifier stored next to a refresh counter. A
// counter whose key differs from the current cycle's key counts as zero.
func CycleKey(anchor *time.Time, now time.Time) string {
	return CycleStart(anchor, now).Format(dayKeyLayout)
}

func clampedDate(year int, month time.Month, day int) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func prevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
