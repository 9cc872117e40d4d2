package booking

import (
	"errors"
	"strings"
	"time"

	"carpa/internal/domain/timetable"
)

// DateLayout is the calendar-date format used for booking dates.
const DateLayout = "2006-01-02"

// StatusConfirmed is the status assigned by the store on creation.
const StatusConfirmed = "confirmed"

// Domain errors
var (
	ErrEmptyUserID   = errors.New("booking must belong to a user")
	ErrInvalidDate   = errors.New("booking date must be a calendar date (YYYY-MM-DD)")
	ErrUnknownSlot   = errors.New("time slot is not part of the timetable")
	ErrAlreadyBooked = errors.New("this class is already booked")
	ErrNotFound      = errors.New("booking not found")
)

// Booking is a member's reservation of one slot on one day.
type Booking struct {
	ID        string
	UserID    string
	Date      string // YYYY-MM-DD, a calendar date with no time zone
	Slot      string // one of Slots()
	Status    string
	CreatedAt time.Time
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUserID
	}
	if _, err := ParseDate(b.Date); err != nil {
		return err
	}
	if !IsValidSlot(b.Slot) {
		return ErrUnknownSlot
	}
	return nil
}

// Slots returns the slot catalogue in display order.
func Slots() []string {
	return timetable.SlotLabels()
}

// IsValidSlot reports whether slot is an exact catalogue label.
func IsValidSlot(slot string) bool {
	return SlotIndex(slot) >= 0
}

// SlotIndex returns the catalogue position of slot, or -1.
func SlotIndex(slot string) int {
	for i, s := range Slots() {
		if s == slot {
			return i
		}
	}
	return -1
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC of that calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate returns the calendar date of t in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the calendar date of now in now's location.
func Today(now time.Time) string {
	return FormatDate(now)
}

// IsPast reports whether date is strictly before today's calendar date.
// Today is never past, whatever the time of day.
// PRE: date is YYYY-MM-DD
func IsPast(date string, now time.Time) bool {
	return date < Today(now)
}

// Less orders bookings by date and then by timetable position.
func Less(a, b Booking) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return SlotIndex(a.Slot) < SlotIndex(b.Slot)
}
