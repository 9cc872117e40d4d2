package web

import (
	"crypto/rand"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"

	"carpa/internal/adapters/email"
	"carpa/internal/adapters/http/middleware"
	"carpa/internal/adapters/http/perf"
	accountStore "carpa/internal/adapters/storage/account"
	blogStore "carpa/internal/adapters/storage/blog"
	bookingStore "carpa/internal/adapters/storage/booking"
	professorStore "carpa/internal/adapters/storage/professor"
	reviewStore "carpa/internal/adapters/storage/review"
	"carpa/internal/application/bookinggrid"
)

//go:embed templates static
var assets embed.FS

// Stores holds all store dependencies for HTTP handlers.
type Stores struct {
	AccountStore   accountStore.Store
	BookingStore   bookingStore.Store
	PostStore      blogStore.Store
	ProfessorStore professorStore.Store
	ReviewStore    reviewStore.Store
}

// Options configures the HTTP surface. Zero values fall back to development defaults.
type Options struct {
	CSRFKey            []byte // 32 bytes; random per process when empty
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimitPerMinute int
	SlowRequest        time.Duration
	Location           *time.Location // gym time zone for "today" and the live timetable
	Sessions           *middleware.SessionStore
	Limiter            *middleware.RateLimiter
	Sender             email.Sender
}

// DefaultRateLimitPerMinute applies when Options.RateLimitPerMinute is zero.
const DefaultRateLimitPerMinute = 300

// Package-level dependencies, set once by NewMux.
var (
	stores        *Stores
	sessions      *middleware.SessionStore
	perfCollector *perf.Collector
	emailSender   email.Sender = email.NewNoopSender()
	gymLocation                = time.UTC
	inflight                   = bookinggrid.NewInFlight()

	// pendingMail tracks best-effort notifications still being sent.
	pendingMail sync.WaitGroup
)

// timeNow returns the current time in the gym's location. Replaced in tests.
var timeNow = func() time.Time {
	return time.Now().In(gymLocation)
}

// WaitForNotifications blocks until every queued booking email has been handed off.
func WaitForNotifications() {
	pendingMail.Wait()
}

func loadCSRFKey(key []byte) []byte {
	if len(key) == 32 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		slog.Error("csrf_key_generation_failed", "error", err.Error())
		os.Exit(1)
	}
	slog.Warn("csrf_key_generated", "reason", "no key configured, sessions will not survive a restart")
	return key
}

// NewMux creates the HTTP handler with all routes and middleware.
// PRE: s has every store set
// POST: the returned handler serves the public site, member pages and admin console
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector

	middleware.SecureCookies = opts.SecureCookies
	if len(opts.TrustedOrigins) > 0 {
		middleware.TrustedOrigins = opts.TrustedOrigins
	}
	if opts.Location != nil {
		gymLocation = opts.Location
	}
	if opts.Sender != nil {
		emailSender = opts.Sender
	}

	sessions = opts.Sessions
	if sessions == nil {
		sessions = middleware.NewSessionStore()
	}
	limiter := opts.Limiter
	if limiter == nil {
		rate := opts.RateLimitPerMinute
		if rate <= 0 {
			rate = DefaultRateLimitPerMinute
		}
		limiter = middleware.NewRateLimiter(rate, time.Minute)
	}

	mux := http.NewServeMux()
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux)

	h := middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(loadCSRFKey(opts.CSRFKey)),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequest),
	)
	h = handlers.CompressHandler(h)
	h = handlers.ProxyHeaders(h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

// recoveryLogger routes recovered panics to slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...any) {
	slog.Error("panic_recovered", "panic", v)
}
