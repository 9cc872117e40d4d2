// Package bookinggrid holds the weekly booking grid: which of the current
// member's classes are booked in the visible week, and the toggle that books
// or cancels a single class.
package bookinggrid

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"carpa/internal/domain/booking"
)

// Repository is the bookings table as the grid needs it.
type Repository interface {
	ListBookings(ctx context.Context, userID, from, to string) ([]booking.Booking, error)
	CreateBooking(ctx context.Context, userID, date, slot string) (booking.Booking, error)
	DeleteBooking(ctx context.Context, userID, date, slot string) error
}

// CellState is the derived display state of one slot on one day.
type CellState string

const (
	CellOpen   CellState = "open"
	CellBooked CellState = "booked"
	CellPast   CellState = "past"
)

// Outcome reports what a successful toggle did.
type Outcome string

const (
	OutcomeBooked    Outcome = "booked"
	OutcomeCancelled Outcome = "cancelled"
)

var (
	ErrAuthRequired   = errors.New("sign in to book a class")
	ErrPastDate       = errors.New("classes on past days cannot be changed")
	ErrOutsideWeek    = errors.New("date is not part of the visible week")
	ErrToggleInFlight = errors.New("this class is already being updated")
)

// RemoteError is a failed call to the bookings store. It is always recoverable:
// local state is left as it was before the call.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return "bookings " + e.Op + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Deps holds dependencies for a Controller.
type Deps struct {
	Repo     Repository
	Now      func() time.Time // must return times in the gym's location
	InFlight *InFlight        // optional: share one across requests to block duplicate toggles
}

// Cell is one slot on one day of the grid.
type Cell struct {
	Date  string
	Slot  string
	State CellState
}

// Row is every weekday of the visible week for one slot.
type Row struct {
	Slot  string
	Cells []Cell
}

// Controller holds the grid state for one viewer.
// The mutex is never held across a repository call.
type Controller struct {
	repo     Repository
	now      func() time.Time
	inflight *InFlight
	userID   string

	mu    sync.Mutex
	week  booking.Week
	mine  []booking.Booking
	epoch uint64 // bumped on every week change and every local mutation
}

// New creates a controller for userID (empty when signed out) showing week.
// PRE: deps.Repo is non-nil
// POST: the controller has no bookings loaded yet
func New(deps Deps, userID string, week booking.Week) *Controller {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	inflight := deps.InFlight
	if inflight == nil {
		inflight = NewInFlight()
	}
	return &Controller{
		repo:     deps.Repo,
		now:      now,
		inflight: inflight,
		userID:   userID,
		week:     week,
	}
}

// Week returns the visible week.
func (c *Controller) Week() booking.Week {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.week
}

// MyBookings returns the viewer's bookings in the visible week, ordered by day and slot.
func (c *Controller) MyBookings() []booking.Booking {
	c.mu.Lock()
	out := make([]booking.Booking, len(c.mine))
	copy(out, c.mine)
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return booking.Less(out[i], out[j]) })
	return out
}

// SetWeek moves the visible week by delta weeks and refetches.
// Any fetch still in flight for the previous week will be discarded on arrival.
// POST: Week() is delta*7 days away from its previous value
func (c *Controller) SetWeek(ctx context.Context, delta int) error {
	c.mu.Lock()
	c.week = c.week.Shift(delta)
	c.epoch++
	c.mu.Unlock()
	return c.LoadMyBookings(ctx)
}

// LoadMyBookings replaces the local bookings with the store's view of the visible week.
// Signed out: clears the bookings without calling the store.
// On failure the previous bookings are kept and a *RemoteError is returned.
// A result that arrives after the week changed, or after a toggle updated the
// local state, is dropped and nil is returned.
func (c *Controller) LoadMyBookings(ctx context.Context) error {
	c.mu.Lock()
	if c.userID == "" {
		c.mine = nil
		c.mu.Unlock()
		return nil
	}
	week, epoch := c.week, c.epoch
	c.mu.Unlock()

	list, err := c.repo.ListBookings(ctx, c.userID, week.Start(), week.End())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		slog.Debug("booking_grid_event", "event", "stale_fetch_discarded", "user_id", c.userID, "week", week.Start())
		return nil
	}
	if err != nil {
		slog.Warn("booking_grid_event", "event", "load_failed", "user_id", c.userID, "week", week.Start(), "error", err.Error())
		return &RemoteError{Op: "list", Err: err}
	}
	mine := make([]booking.Booking, 0, len(list))
	for _, b := range list {
		if week.Contains(b.Date) {
			mine = append(mine, b)
		}
	}
	c.mine = mine
	return nil
}

// IsBooked reports whether the viewer holds (date, slot). Dates compare as calendar dates.
func (c *Controller) IsBooked(date, slot string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return indexOf(c.mine, date, slot) >= 0
}

// IsPast reports whether date is strictly before today. Today is never past.
func (c *Controller) IsPast(date string) bool {
	return booking.IsPast(date, c.now())
}

// State returns the display state of a cell. Past wins over booked.
func (c *Controller) State(date, slot string) CellState {
	if c.IsPast(date) {
		return CellPast
	}
	if c.IsBooked(date, slot) {
		return CellBooked
	}
	return CellOpen
}

// Grid returns the slot × weekday matrix of the visible week.
func (c *Controller) Grid() []Row {
	days := c.Week().Days()
	slots := booking.Slots()
	rows := make([]Row, len(slots))
	for i, slot := range slots {
		cells := make([]Cell, len(days))
		for j, day := range days {
			cells[j] = Cell{Date: day, Slot: slot, State: c.State(day, slot)}
		}
		rows[i] = Row{Slot: slot, Cells: cells}
	}
	return rows
}

// CanToggle runs every check Toggle makes before touching the store, in the
// same order: viewer, date, slot, past, visible week.
func (c *Controller) CanToggle(date, slot string) error {
	if c.userID == "" {
		return ErrAuthRequired
	}
	if _, err := booking.ParseDate(date); err != nil {
		return err
	}
	if !booking.IsValidSlot(slot) {
		return booking.ErrUnknownSlot
	}
	if c.IsPast(date) {
		return ErrPastDate
	}
	if !c.Week().Contains(date) {
		return ErrOutsideWeek
	}
	return nil
}

// Toggle books an open class or cancels a booked one.
// PRE: the bookings of the visible week have been loaded
// POST: on success the local state mirrors the store; on error it is unchanged
// INVARIANT: no store call is made for signed-out viewers, past dates, unknown
// slots, dates outside the visible week, or a cell already being toggled
func (c *Controller) Toggle(ctx context.Context, date, slot string) (Outcome, error) {
	if err := c.CanToggle(date, slot); err != nil {
		return "", err
	}

	release, ok := c.inflight.Acquire(c.userID, date, slot)
	if !ok {
		return "", ErrToggleInFlight
	}
	defer release()

	if c.IsBooked(date, slot) {
		if err := c.repo.DeleteBooking(ctx, c.userID, date, slot); err != nil {
			slog.Warn("booking_event", "event", "cancel_failed", "user_id", c.userID, "date", date, "slot", slot, "error", err.Error())
			return "", &RemoteError{Op: "delete", Err: err}
		}
		c.mu.Lock()
		if i := indexOf(c.mine, date, slot); i >= 0 {
			c.mine = append(c.mine[:i], c.mine[i+1:]...)
		}
		c.epoch++
		c.mu.Unlock()
		slog.Info("booking_event", "event", "booking_cancelled", "user_id", c.userID, "date", date, "slot", slot)
		return OutcomeCancelled, nil
	}

	created, err := c.repo.CreateBooking(ctx, c.userID, date, slot)
	if err != nil {
		slog.Warn("booking_event", "event", "book_failed", "user_id", c.userID, "date", date, "slot", slot, "error", err.Error())
		return "", &RemoteError{Op: "create", Err: err}
	}
	c.mu.Lock()
	if c.week.Contains(created.Date) && indexOf(c.mine, created.Date, created.Slot) < 0 {
		c.mine = append(c.mine, created)
	}
	c.epoch++
	c.mu.Unlock()
	slog.Info("booking_event", "event", "booking_created", "user_id", c.userID, "booking_id", created.ID, "date", date, "slot", slot)
	return OutcomeBooked, nil
}

func indexOf(list []booking.Booking, date, slot string) int {
	for i, b := range list {
		if b.Date == date && b.Slot == slot {
			return i
		}
	}
	return -1
}
