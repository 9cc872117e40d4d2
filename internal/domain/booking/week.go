package booking

import "time"

// DaysPerWeek is the number of bookable weekdays, Monday to Friday.
const DaysPerWeek = 5

// Week is a Monday-aligned window of DaysPerWeek calendar dates.
type Week struct {
	start time.Time // midnight UTC of the Monday
}

// Weeks are bounded to four-digit years so every date keeps the fixed-width
// YYYY-MM-DD form: string order is calendar order and ParseDate accepts it.
var (
	firstWeek = Week{start: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)}     // a Monday
	lastWeek  = Week{start: time.Date(9999, 12, 27, 0, 0, 0, 0, time.UTC)} // its Friday is 9999-12-31
)

// maxShift exceeds the number of weeks between firstWeek and lastWeek.
const maxShift = 53 * 10000

// WeekOf returns the week containing the calendar date of t.
// Saturdays and Sundays belong to the week that started on the preceding Monday.
func WeekOf(t time.Time) Week {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return Week{start: d.AddDate(0, 0, -offset)}
}

// ParseWeek returns the week containing the given YYYY-MM-DD date.
func ParseWeek(date string) (Week, error) {
	t, err := ParseDate(date)
	if err != nil {
		return Week{}, err
	}
	return WeekOf(t), nil
}

// Shift returns the week delta weeks away, clamped to years 0001 through 9999.
// POST: Start and End always parse with ParseDate
func (w Week) Shift(delta int) Week {
	switch {
	case delta > maxShift:
		return lastWeek
	case delta < -maxShift:
		return firstWeek
	}
	next := Week{start: w.start.AddDate(0, 0, 7*delta)}
	switch {
	case next.start.After(lastWeek.start):
		return lastWeek
	case next.start.Before(firstWeek.start):
		return firstWeek
	}
	return next
}

// Start returns the Monday as a date string.
func (w Week) Start() string {
	return FormatDate(w.start)
}

// End returns the Friday as a date string.
func (w Week) End() string {
	return FormatDate(w.start.AddDate(0, 0, DaysPerWeek-1))
}

// Dates returns the five weekdays at midnight UTC.
func (w Week) Dates() []time.Time {
	out := make([]time.Time, DaysPerWeek)
	for i := range out {
		out[i] = w.start.AddDate(0, 0, i)
	}
	return out
}

// Days returns the five weekdays as date strings.
func (w Week) Days() []string {
	out := make([]string, DaysPerWeek)
	for i, d := range w.Dates() {
		out[i] = FormatDate(d)
	}
	return out
}

// Contains reports whether date falls on one of the week's weekdays.
// PRE: date is YYYY-MM-DD; within the year bound string order is calendar order
func (w Week) Contains(date string) bool {
	return date >= w.Start() && date <= w.End()
}
