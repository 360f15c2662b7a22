package rules

import "time"

const dayKeyLayout = "2006-01-02"

func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dayKeyLayout)
}

// CalendarDate truncates now to the calendar date observed in loc and returns it as UTC midnight,
// so that dates from different zones compare by year/month/day only.
func CalendarDate(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b; negative when b is before a.
func DaysBetween(a, b time.Time) int {
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func ParseDayKey(value string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, value, time.UTC)
}
