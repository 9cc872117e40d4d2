package timetable

import (
	"fmt"
	"time"
)

// SessionMinutes is the length of every class.
const SessionMinutes = 50

// Session is one class window on a weekday. Start and End are minutes since midnight.
type Session struct {
	Label string
	Slot  string // booking slot label, e.g. "6:30"
	Start int
	End   int
}

// Sessions is the fixed weekday timetable, in order.
var Sessions = []Session{
	newSession(1, 6*60+30),
	newSession(2, 7*60+30),
	newSession(3, 8*60+30),
	newSession(4, 9*60+30),
	newSession(5, 14*60+30),
	newSession(6, 17*60),
	newSession(7, 18*60),
	newSession(8, 19*60),
}

func newSession(n, start int) Session {
	return Session{
		Label: fmt.Sprintf("Sesión %d", n),
		Slot:  clock(start),
		Start: start,
		End:   start + SessionMinutes,
	}
}

// Range returns the human readable window, e.g. "6:30 - 7:20".
func (s Session) Range() string {
	return clock(s.Start) + " - " + clock(s.End)
}

// SlotLabels returns the slot label of every session, in timetable order.
func SlotLabels() []string {
	labels := make([]string, len(Sessions))
	for i, s := range Sessions {
		labels[i] = s.Slot
	}
	return labels
}

// CurrentSession returns the index of the session running at now, or -1.
// Both ends of a session window are inclusive. Weekends never have a session.
// PRE: now carries the gym's location
// POST: returns -1 or a valid index into Sessions
func CurrentSession(now time.Time) int {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return -1
	}
	mins := now.Hour()*60 + now.Minute()
	for i, s := range Sessions {
		if mins >= s.Start && mins <= s.End {
			return i
		}
	}
	return -1
}

func clock(mins int) string {
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}
