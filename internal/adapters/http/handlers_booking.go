package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"carpa/internal/adapters/http/middleware"
	"carpa/internal/application/bookinggrid"
	"carpa/internal/application/orchestrators"
	"carpa/internal/domain/booking"
)

// notifyTimeout bounds one confirmation or cancellation email.
const notifyTimeout = 15 * time.Second

// Flash codes carried in the "aviso" query parameter after a toggle.
const (
	flashBooked    = "reservada"
	flashCancelled = "cancelada"
	flashPast      = "pasada"
	flashInvalid   = "invalida"
	flashBusy      = "en-curso"
	flashDuplicate = "duplicada"
	flashFailed    = "error"
	flashReview    = "resena"
)

var flashMessages = map[string]string{
	flashBooked:    "¡Clase reservada! Te esperamos.",
	flashCancelled: "Reserva cancelada.",
	flashPast:      "No puedes cambiar clases de días pasados.",
	flashInvalid:   "Esa clase no existe en esta semana.",
	flashBusy:      "Ya estamos procesando esa clase, espera un momento.",
	flashDuplicate: "Ya tenías esa clase reservada.",
	flashFailed:    "No se pudo completar la operación. Inténtalo de nuevo.",
	flashReview:    "¡Gracias! Tu reseña se publicará cuando la revisemos.",
}

// toggleFailure maps a toggle error to an HTTP status and a flash code.
// ErrAuthRequired is handled by callers before this is reached.
func toggleFailure(err error) (int, string) {
	var remote *bookinggrid.RemoteError
	switch {
	case errors.Is(err, bookinggrid.ErrPastDate):
		return http.StatusBadRequest, flashPast
	case errors.Is(err, bookinggrid.ErrOutsideWeek),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrUnknownSlot):
		return http.StatusBadRequest, flashInvalid
	case errors.Is(err, bookinggrid.ErrToggleInFlight):
		return http.StatusConflict, flashBusy
	case errors.Is(err, booking.ErrAlreadyBooked):
		return http.StatusConflict, flashDuplicate
	case errors.As(err, &remote):
		return http.StatusBadGateway, flashFailed
	default:
		return http.StatusInternalServerError, flashFailed
	}
}

func gridDeps() bookinggrid.Deps {
	return bookinggrid.Deps{
		Repo:     stores.BookingStore,
		Now:      timeNow,
		InFlight: inflight,
	}
}

// weekParam reads the "semana" query parameter: any date of the wanted week.
// A missing or malformed value shows the current week.
func weekParam(r *http.Request) booking.Week {
	if w, err := booking.ParseWeek(r.URL.Query().Get("semana")); err == nil {
		return w
	}
	return booking.WeekOf(timeNow())
}

func scheduleURL(week booking.Week, flash string) string {
	q := url.Values{}
	q.Set("semana", week.Start())
	if flash != "" {
		q.Set("aviso", flash)
	}
	return "/horarios?" + q.Encode()
}

// toggleBooking books or cancels (date, slot) for userID and queues the email notice.
// Every check that needs no store runs before the week's bookings are loaded.
func toggleBooking(ctx context.Context, userID, date, slot string) (bookinggrid.Outcome, error) {
	week, err := booking.ParseWeek(date)
	if err != nil {
		week = booking.WeekOf(timeNow())
	}
	grid := bookinggrid.New(gridDeps(), userID, week)
	if err := grid.CanToggle(date, slot); err != nil {
		return "", err
	}
	if err := grid.LoadMyBookings(ctx); err != nil {
		return "", err
	}
	outcome, err := grid.Toggle(ctx, date, slot)
	if err != nil {
		return "", err
	}
	notifyBooking(userID, date, slot, outcome)
	return outcome, nil
}

// notifyBooking sends the confirmation or cancellation email in the background.
// Failures are logged and never change the toggle outcome.
func notifyBooking(userID, date, slot string, outcome bookinggrid.Outcome) {
	input := orchestrators.NotifyBookingInput{
		UserID:    userID,
		Date:      date,
		Slot:      slot,
		Cancelled: outcome == bookinggrid.OutcomeCancelled,
	}
	deps := orchestrators.NotifyBookingDeps{Accounts: stores.AccountStore, Sender: emailSender}

	pendingMail.Add(1)
	go func() {
		defer pendingMail.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := orchestrators.ExecuteNotifyBooking(ctx, input, deps); err != nil {
			slog.Warn("notification_event", "event", "booking_notice_failed", "user_id", userID, "date", date, "slot", slot, "error", err.Error())
		}
	}()
}

// dayHeader is one column heading of the grid.
type dayHeader struct {
	Date  string
	Name  string // "Lunes"
	Short string // "3/6"
	Today bool
}

var weekdayNames = [booking.DaysPerWeek]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}

// schedulePage is the data of schedule.html.
type schedulePage struct {
	Week       booking.Week
	Days       []dayHeader
	Rows       []bookinggrid.Row
	Mine       []booking.Booking
	Prev       string
	Next       string
	ThisWeek   string
	SignIn     string
	SignedIn   bool
	LoadFailed bool
	Flash      string
	FlashError bool
}

// handleSchedule handles GET /horarios: the weekly grid for the visitor.
func handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, signedIn := middleware.GetSessionFromContext(r.Context())
	week := weekParam(r)

	grid := bookinggrid.New(gridDeps(), sess.AccountID, week)
	loadErr := grid.LoadMyBookings(r.Context())

	today := booking.Today(timeNow())
	days := make([]dayHeader, 0, booking.DaysPerWeek)
	for i, d := range week.Dates() {
		date := booking.FormatDate(d)
		days = append(days, dayHeader{
			Date:  date,
			Name:  weekdayNames[i],
			Short: strconv.Itoa(d.Day()) + "/" + strconv.Itoa(int(d.Month())),
			Today: date == today,
		})
	}

	code := r.URL.Query().Get("aviso")
	page := schedulePage{
		Week:       week,
		Days:       days,
		Rows:       grid.Grid(),
		Mine:       grid.MyBookings(),
		Prev:       scheduleURL(week.Shift(-1), ""),
		Next:       scheduleURL(week.Shift(1), ""),
		ThisWeek:   scheduleURL(booking.WeekOf(timeNow()), ""),
		SignIn:     middleware.LoginURL(scheduleURL(week, "")),
		SignedIn:   signedIn,
		LoadFailed: loadErr != nil,
		Flash:      flashMessages[code],
		FlashError: code != flashBooked && code != flashCancelled,
	}
	renderTemplate(w, r, "schedule.html", page)
}

// handleScheduleToggle handles POST /horarios/reservar from the grid's cell forms.
// It always redirects back to the week of the toggled date.
func handleScheduleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	date, slot := r.FormValue("date"), r.FormValue("slot")

	week, err := booking.ParseWeek(date)
	if err != nil {
		week = booking.WeekOf(timeNow())
	}

	outcome, err := toggleBooking(r.Context(), sess.AccountID, date, slot)
	if errors.Is(err, bookinggrid.ErrAuthRequired) {
		http.Redirect(w, r, middleware.LoginURL(scheduleURL(week, "")), http.StatusSeeOther)
		return
	}
	flash := flashBooked
	if outcome == bookinggrid.OutcomeCancelled {
		flash = flashCancelled
	}
	if err != nil {
		_, flash = toggleFailure(err)
	}
	http.Redirect(w, r, scheduleURL(week, flash), http.StatusSeeOther)
}

type toggleRequest struct {
	Date string `json:"date"`
	Slot string `json:"slot"`
}

type toggleResponse struct {
	Outcome bookinggrid.Outcome   `json:"outcome"`
	State   bookinggrid.CellState `json:"state"`
	Date    string                `json:"date"`
	Slot    string                `json:"slot"`
	Message string                `json:"message"`
}

type apiError struct {
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// handleToggleAPI handles POST /api/bookings/toggle for the grid script.
// Signed-out callers get 401 with the login redirect rather than an error message.
func handleToggleAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apiError{Redirect: "/auth"})
		return
	}
	var input toggleRequest
	if err := strictDecode(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid_json", Message: "invalid JSON"})
		return
	}

	outcome, err := toggleBooking(r.Context(), sess.AccountID, input.Date, input.Slot)
	if errors.Is(err, bookinggrid.ErrAuthRequired) {
		writeJSON(w, http.StatusUnauthorized, apiError{Redirect: "/auth"})
		return
	}
	if err != nil {
		status, code := toggleFailure(err)
		writeJSON(w, status, apiError{Error: code, Message: flashMessages[code]})
		return
	}

	res := toggleResponse{Outcome: outcome, Date: input.Date, Slot: input.Slot}
	if outcome == bookinggrid.OutcomeBooked {
		res.State, res.Message = bookinggrid.CellBooked, flashMessages[flashBooked]
	} else {
		res.State, res.Message = bookinggrid.CellOpen, flashMessages[flashCancelled]
	}
	writeJSON(w, http.StatusOK, res)
}

type gridCellJSON struct {
	Date  string                `json:"date"`
	State bookinggrid.CellState `json:"state"`
}

type gridRowJSON struct {
	Slot  string         `json:"slot"`
	Range string         `json:"range"`
	Cells []gridCellJSON `json:"cells"`
}

type gridJSON struct {
	WeekStart string        `json:"week_start"`
	WeekEnd   string        `json:"week_end"`
	SignedIn  bool          `json:"signed_in"`
	Days      []string      `json:"days"`
	Rows      []gridRowJSON `json:"rows"`
}

// handleBookingsAPI handles GET /api/bookings?semana=YYYY-MM-DD: the grid as JSON.
func handleBookingsAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, signedIn := middleware.GetSessionFromContext(r.Context())
	week := weekParam(r)

	grid := bookinggrid.New(gridDeps(), sess.AccountID, week)
	if err := grid.LoadMyBookings(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, apiError{Error: flashFailed, Message: "No se pudieron cargar tus reservas."})
		return
	}

	res := gridJSON{
		WeekStart: week.Start(),
		WeekEnd:   week.End(),
		SignedIn:  signedIn,
		Days:      week.Days(),
	}
	for _, row := range grid.Grid() {
		jr := gridRowJSON{Slot: row.Slot, Range: orchestrators.SlotRange(row.Slot)}
		for _, c := range row.Cells {
			jr.Cells = append(jr.Cells, gridCellJSON{Date: c.Date, State: c.State})
		}
		res.Rows = append(res.Rows, jr)
	}
	writeJSON(w, http.StatusOK, res)
}
