package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	bookingStore "carpa/internal/adapters/storage/booking"
	"carpa/internal/application/bookinggrid"
	"carpa/internal/domain/booking"
)

// unreachableBookingStore fails every read, as if the database were down.
type unreachableBookingStore struct {
	bookingStore.Store
}

func (unreachableBookingStore) ListBookings(ctx context.Context, userID, from, to string) ([]booking.Booking, error) {
	return nil, errors.New("connection refused")
}

func toggleJSON(date, slot string) string {
	return fmt.Sprintf(`{"date":%q,"slot":%q}`, date, slot)
}

func decodeToggle(t *testing.T, rec *httptest.ResponseRecorder) toggleResponse {
	t.Helper()
	var res toggleResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var res apiError
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

// --- Tests: /api/bookings/toggle ---

// TestHandleToggleAPI_Unauthenticated tests the corresponding handler.
func TestHandleToggleAPI_Unauthenticated(t *testing.T) {
	setupTest(t)
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/toggle", strings.NewReader(toggleJSON("2024-06-05", "6:30")))
	rec := httptest.NewRecorder()
	handleToggleAPI(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if res := decodeAPIError(t, rec); res.Redirect != "/auth" {
		t.Errorf("redirect = %q, want /auth", res.Redirect)
	}
}

// TestHandleToggleAPI_BookThenCancel tests the corresponding handler.
func TestHandleToggleAPI_BookThenCancel(t *testing.T) {
	sender := setupTest(t)
	sess := seedMember(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	handleToggleAPI(rec, authRequest(http.MethodPost, "/api/bookings/toggle", toggleJSON("2024-06-05", "6:30"), sess))
	if rec.Code != http.StatusOK {
		t.Fatalf("book: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	res := decodeToggle(t, rec)
	if res.Outcome != bookinggrid.OutcomeBooked || res.State != bookinggrid.CellBooked {
		t.Errorf("book: got %+v", res)
	}
	list, _ := stores.BookingStore.ListBookings(ctx, sess.AccountID, "2024-06-03", "2024-06-07")
	if len(list) != 1 {
		t.Fatalf("got %d bookings after booking, want 1", len(list))
	}

	rec = httptest.NewRecorder()
	handleToggleAPI(rec, authRequest(http.MethodPost, "/api/bookings/toggle", toggleJSON("2024-06-05", "6:30"), sess))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	res = decodeToggle(t, rec)
	if res.Outcome != bookinggrid.OutcomeCancelled || res.State != bookinggrid.CellOpen {
		t.Errorf("cancel: got %+v", res)
	}
	list, _ = stores.BookingStore.ListBookings(ctx, sess.AccountID, "2024-06-03", "2024-06-07")
	if len(list) != 0 {
		t.Errorf("got %d bookings after cancelling, want 0", len(list))
	}

	WaitForNotifications()
	msgs := sender.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d emails, want 2", len(msgs))
	}
	if msgs[0].To != "ana@example.com" || !strings.HasPrefix(msgs[0].Subject, "Reserva confirmada") {
		t.Errorf("first email = %+v", msgs[0])
	}
	if !strings.HasPrefix(msgs[1].Subject, "Reserva cancelada") {
		t.Errorf("second email subject = %q", msgs[1].Subject)
	}
}

// TestHandleToggleAPI_Rejections tests the corresponding handler.
func TestHandleToggleAPI_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"past day", toggleJSON("2024-06-03", "6:30"), http.StatusBadRequest, flashPast},
		{"unknown slot", toggleJSON("2024-06-05", "5:00"), http.StatusBadRequest, flashInvalid},
		{"weekend", toggleJSON("2024-06-08", "6:30"), http.StatusBadRequest, flashInvalid},
		{"malformed date", toggleJSON("5/6/2024", "6:30"), http.StatusBadRequest, flashInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTest(t)
			sess := seedMember(t)
			rec := httptest.NewRecorder()
			handleToggleAPI(rec, authRequest(http.MethodPost, "/api/bookings/toggle", tt.body, sess))
			if rec.Code != tt.status {
				t.Fatalf("got %d, want %d", rec.Code, tt.status)
			}
			if res := decodeAPIError(t, rec); res.Error != tt.code || res.Message == "" {
				t.Errorf("got %+v, want code %q with a message", res, tt.code)
			}
		})
	}
}

// TestHandleToggleAPI_InFlight verifies a second click on a busy cell is refused.
func TestHandleToggleAPI_InFlight(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	release, ok := inflight.Acquire(sess.AccountID, "2024-06-05", "6:30")
	if !ok {
		t.Fatal("Acquire failed")
	}
	defer release()

	rec := httptest.NewRecorder()
	handleToggleAPI(rec, authRequest(http.MethodPost, "/api/bookings/toggle", toggleJSON("2024-06-05", "6:30"), sess))
	if rec.Code != http.StatusConflict {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusConflict)
	}
	if res := decodeAPIError(t, rec); res.Error != flashBusy {
		t.Errorf("error = %q, want %q", res.Error, flashBusy)
	}
	list, _ := stores.BookingStore.ListBookings(context.Background(), sess.AccountID, "2024-06-03", "2024-06-07")
	if len(list) != 0 {
		t.Errorf("got %d bookings, want none while the cell is busy", len(list))
	}
}

// TestHandleToggleAPI_UnknownField tests the corresponding handler.
func TestHandleToggleAPI_UnknownField(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	rec := httptest.NewRecorder()
	handleToggleAPI(rec, authRequest(http.MethodPost, "/api/bookings/toggle", `{"date":"2024-06-05","slot":"6:30","user_id":"x"}`, sess))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestHandleToggleAPI_StoreDown tests the corresponding handler.
func TestHandleToggleAPI_StoreDown(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	stores.BookingStore = unreachableBookingStore{stores.BookingStore}

	rec := httptest.NewRecorder()
	handleToggleAPI(rec, authRequest(http.MethodPost, "/api/bookings/toggle", toggleJSON("2024-06-05", "6:30"), sess))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

// TestHandleToggleAPI_MethodNotAllowed tests the corresponding handler.
func TestHandleToggleAPI_MethodNotAllowed(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleToggleAPI(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/toggle", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("got %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

// --- Tests: /horarios/reservar ---

// TestHandleScheduleToggle_RedirectsWithFlash tests the corresponding handler.
func TestHandleScheduleToggle_RedirectsWithFlash(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	form := url.Values{"date": {"2024-06-06"}, "slot": {"18:00"}}

	rec := httptest.NewRecorder()
	handleScheduleToggle(rec, formRequest("/horarios/reservar", form, &sess))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/horarios?aviso=reservada&semana=2024-06-03" {
		t.Errorf("Location = %q", loc)
	}

	rec = httptest.NewRecorder()
	handleScheduleToggle(rec, formRequest("/horarios/reservar", form, &sess))
	if loc := rec.Header().Get("Location"); loc != "/horarios?aviso=cancelada&semana=2024-06-03" {
		t.Errorf("Location after second toggle = %q", loc)
	}
}

// TestHandleScheduleToggle_PastDay tests the corresponding handler.
func TestHandleScheduleToggle_PastDay(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	rec := httptest.NewRecorder()
	handleScheduleToggle(rec, formRequest("/horarios/reservar", url.Values{"date": {"2024-06-04"}, "slot": {"6:30"}}, &sess))
	if loc := rec.Header().Get("Location"); loc != "/horarios?aviso=pasada&semana=2024-06-03" {
		t.Errorf("Location = %q", loc)
	}
}

// TestHandleScheduleToggle_Unauthenticated tests the corresponding handler.
func TestHandleScheduleToggle_Unauthenticated(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleScheduleToggle(rec, formRequest("/horarios/reservar", url.Values{"date": {"2024-06-12"}, "slot": {"6:30"}}, nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	want := "/auth?next=" + url.QueryEscape("/horarios?semana=2024-06-10")
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}
}

// --- Tests: /horarios ---

// TestHandleSchedule_Visitor tests the corresponding handler.
func TestHandleSchedule_Visitor(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleSchedule(rec, httptest.NewRequest(http.MethodGet, "/horarios", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`data-week="2024-06-03"`, "Inicia sesión", "cell cell-past", "cell cell-open"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "cell cell-booked") {
		t.Error("visitor grid must not show booked cells")
	}
}

// TestHandleSchedule_MemberSeesOwnBookings tests the corresponding handler.
func TestHandleSchedule_MemberSeesOwnBookings(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	other := seedAccount(t, "luis@example.com", "Luis", "member")
	ctx := context.Background()
	stores.BookingStore.CreateBooking(ctx, sess.AccountID, "2024-06-07", "19:00")
	stores.BookingStore.CreateBooking(ctx, other.AccountID, "2024-06-06", "6:30")

	rec := httptest.NewRecorder()
	handleSchedule(rec, authRequest(http.MethodGet, "/horarios?aviso=reservada", "", sess))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if n := strings.Count(body, "cell cell-booked"); n != 1 {
		t.Errorf("got %d booked cells, want 1 (other members' bookings stay hidden)", n)
	}
	if !strings.Contains(body, "Tus clases esta semana") {
		t.Error("body missing the member's booking list")
	}
	if !strings.Contains(body, flashMessages[flashBooked]) {
		t.Error("body missing the flash message")
	}
}

// TestHandleSchedule_WeekParam tests the corresponding handler.
func TestHandleSchedule_WeekParam(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleSchedule(rec, httptest.NewRequest(http.MethodGet, "/horarios?semana=2024-06-13", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `data-week="2024-06-10"`) {
		t.Error("expected the week of 2024-06-13")
	}
	if strings.Contains(body, "cell cell-past") {
		t.Error("a future week has no past cells")
	}

	rec = httptest.NewRecorder()
	handleSchedule(rec, httptest.NewRequest(http.MethodGet, "/horarios?semana=mañana", nil))
	if !strings.Contains(rec.Body.String(), `data-week="2024-06-03"`) {
		t.Error("a malformed week should fall back to the current week")
	}
}

// TestHandleSchedule_SignInKeepsWeek verifies a visitor browsing another week returns to it after signing in.
func TestHandleSchedule_SignInKeepsWeek(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleSchedule(rec, httptest.NewRequest(http.MethodGet, "/horarios?semana=2024-06-13", nil))
	want := `href="/auth?next=` + url.QueryEscape("/horarios?semana=2024-06-10") + `"`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("body missing sign-in link %s", want)
	}
}

// TestHandleSchedule_LoadFailure tests the corresponding handler.
func TestHandleSchedule_LoadFailure(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	stores.BookingStore = unreachableBookingStore{stores.BookingStore}

	rec := httptest.NewRecorder()
	handleSchedule(rec, authRequest(http.MethodGet, "/horarios", "", sess))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No se pudieron cargar tus reservas") {
		t.Error("body missing the load failure notice")
	}
}

// --- Tests: /api/bookings ---

// TestHandleBookingsAPI_Grid tests the corresponding handler.
func TestHandleBookingsAPI_Grid(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	stores.BookingStore.CreateBooking(context.Background(), sess.AccountID, "2024-06-05", "8:30")

	rec := httptest.NewRecorder()
	handleBookingsAPI(rec, authRequest(http.MethodGet, "/api/bookings", "", sess))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var res gridJSON
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.WeekStart != "2024-06-03" || res.WeekEnd != "2024-06-07" || !res.SignedIn {
		t.Errorf("header = %+v", res)
	}
	if len(res.Rows) != 8 || len(res.Rows[0].Cells) != 5 {
		t.Fatalf("grid is %d rows, want 8 rows of 5", len(res.Rows))
	}
	if res.Rows[0].Cells[0].State != bookinggrid.CellPast {
		t.Errorf("Monday cell = %q, want past", res.Rows[0].Cells[0].State)
	}
	if res.Rows[2].Slot != "8:30" || res.Rows[2].Cells[2].State != bookinggrid.CellBooked {
		t.Errorf("Wednesday 8:30 = %+v, want booked", res.Rows[2].Cells[2])
	}
	if res.Rows[0].Range != "6:30 - 7:20" {
		t.Errorf("range = %q", res.Rows[0].Range)
	}
}

// TestHandleBookingsAPI_StoreDown tests the corresponding handler.
func TestHandleBookingsAPI_StoreDown(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	stores.BookingStore = unreachableBookingStore{stores.BookingStore}
	rec := httptest.NewRecorder()
	handleBookingsAPI(rec, authRequest(http.MethodGet, "/api/bookings", "", sess))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

// TestToggleFailure maps every toggle error to its response.
func TestToggleFailure(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{bookinggrid.ErrPastDate, http.StatusBadRequest, flashPast},
		{bookinggrid.ErrOutsideWeek, http.StatusBadRequest, flashInvalid},
		{booking.ErrInvalidDate, http.StatusBadRequest, flashInvalid},
		{booking.ErrUnknownSlot, http.StatusBadRequest, flashInvalid},
		{bookinggrid.ErrToggleInFlight, http.StatusConflict, flashBusy},
		{booking.ErrAlreadyBooked, http.StatusConflict, flashDuplicate},
		{&bookinggrid.RemoteError{Op: "create", Err: errors.New("timeout")}, http.StatusBadGateway, flashFailed},
		{errors.New("boom"), http.StatusInternalServerError, flashFailed},
	}
	for _, tt := range tests {
		status, code := toggleFailure(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("toggleFailure(%v) = %d %q, want %d %q", tt.err, status, code, tt.status, tt.code)
		}
	}
}
