package web

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"carpa/internal/adapters/email"
	"carpa/internal/adapters/http/middleware"
	"carpa/internal/adapters/storage"
	accountStore "carpa/internal/adapters/storage/account"
	blogStore "carpa/internal/adapters/storage/blog"
	bookingStore "carpa/internal/adapters/storage/booking"
	professorStore "carpa/internal/adapters/storage/professor"
	reviewStore "carpa/internal/adapters/storage/review"
	"carpa/internal/application/bookinggrid"
	"carpa/internal/application/orchestrators"
	accountDomain "carpa/internal/domain/account"
)

// testNow is a Wednesday; Monday 2024-06-03 and Tuesday are past.
var testNow = time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

// recordingSender keeps every message instead of delivering it.
type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) (email.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return email.Receipt{ID: "test", SentAt: testNow}, nil
}

func (s *recordingSender) SendBatch(ctx context.Context, msgs []email.Message) ([]email.Receipt, error) {
	receipts := make([]email.Receipt, 0, len(msgs))
	for _, m := range msgs {
		r, _ := s.Send(ctx, m)
		receipts = append(receipts, r)
	}
	return receipts, nil
}

func (s *recordingSender) Messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.sent...)
}

// newTestStores returns every store backed by one in-memory SQLite database.
func newTestStores(t *testing.T) *Stores {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	return &Stores{
		AccountStore:   accountStore.NewSQLiteStore(db),
		BookingStore:   bookingStore.NewSQLiteStore(db),
		PostStore:      blogStore.NewSQLiteStore(db),
		ProfessorStore: professorStore.NewSQLiteStore(db),
		ReviewStore:    reviewStore.NewSQLiteStore(db),
	}
}

// setupTest resets the package globals and pins the clock to testNow.
func setupTest(t *testing.T) *recordingSender {
	t.Helper()
	stores = newTestStores(t)
	sessions = middleware.NewSessionStore()
	inflight = bookinggrid.NewInFlight()
	perfCollector = nil
	sender := &recordingSender{}
	emailSender = sender
	prevNow := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() {
		WaitForNotifications()
		timeNow = prevNow
		emailSender = email.NewNoopSender()
	})
	return sender
}

// seedAccount registers an account through the sign-up path and returns its session.
func seedAccount(t *testing.T, emailAddr, fullName, role string) middleware.Session {
	t.Helper()
	acct, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    emailAddr,
		Password: "secreto123",
		FullName: fullName,
		Role:     role,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   generateID,
		Now:          time.Now,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return middleware.Session{
		AccountID: acct.ID,
		Email:     acct.Email,
		FullName:  acct.FullName,
		Role:      acct.Role,
		CreatedAt: time.Now(),
	}
}

func seedMember(t *testing.T) middleware.Session {
	return seedAccount(t, "ana@example.com", "Ana Ruiz", accountDomain.RoleMember)
}

func seedAdmin(t *testing.T) middleware.Session {
	return seedAccount(t, "admin@example.com", "Marta Gil", accountDomain.RoleAdmin)
}

// authRequest returns a request with the given session injected into context.
func authRequest(method, url string, body string, sess middleware.Session) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	ctx := middleware.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx)
}

// formRequest returns a form POST, signed in when sess is non-nil.
func formRequest(target string, form url.Values, sess *middleware.Session) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sess != nil {
		req = req.WithContext(middleware.ContextWithSession(req.Context(), *sess))
	}
	return req
}

// TestLocalPath_RejectsOffsiteTargets verifies the post-login redirect stays on this site.
func TestLocalPath_RejectsOffsiteTargets(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/horarios?semana=2024-06-03", "/horarios?semana=2024-06-03"},
		{"", "/dashboard"},
		{"https://evil.example", "/dashboard"},
		{"//evil.example", "/dashboard"},
		{"/\\evil.example", "/dashboard"},
	}
	for _, tt := range tests {
		if got := localPath(tt.next, "/dashboard"); got != tt.want {
			t.Errorf("localPath(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

// TestMarkdown_EscapesRawHTML verifies post bodies cannot inject markup.
func TestMarkdown_EscapesRawHTML(t *testing.T) {
	out := string(markdown("**fuerte**\n\n<script>alert(1)</script>"))
	if !strings.Contains(out, "<strong>fuerte</strong>") {
		t.Errorf("markdown = %q, want bold text", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("markdown = %q, raw HTML must not pass through", out)
	}
}

// TestHandleNotFound_Renders404 verifies unknown paths get the not-found page.
func TestHandleNotFound_Renders404(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleHome(rec, httptest.NewRequest(http.MethodGet, "/nada", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no existe") {
		t.Errorf("body missing not-found text")
	}
}
