package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	emailPkg "carpa/internal/adapters/email"
	web "carpa/internal/adapters/http"
	"carpa/internal/adapters/http/middleware"
	"carpa/internal/adapters/http/perf"
	"carpa/internal/adapters/storage"
	accountStore "carpa/internal/adapters/storage/account"
	blogStore "carpa/internal/adapters/storage/blog"
	bookingStore "carpa/internal/adapters/storage/booking"
	professorStore "carpa/internal/adapters/storage/professor"
	reviewStore "carpa/internal/adapters/storage/review"
	"carpa/internal/application/orchestrators"
	"carpa/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// purgeSpec runs session and rate limiter housekeeping every quarter hour.
const purgeSpec = "*/15 * * * *"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
	loc := cfg.Location()
	ctx := context.Background()

	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := storage.MigrateDB(ctx, db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery())

	stores := &web.Stores{
		AccountStore:   accountStore.NewSQLiteStore(timedDB),
		BookingStore:   bookingStore.NewSQLiteStore(timedDB),
		PostStore:      blogStore.NewSQLiteStore(timedDB),
		ProfessorStore: professorStore.NewSQLiteStore(timedDB),
		ReviewStore:    reviewStore.NewSQLiteStore(timedDB),
	}
	if cfg.BookingsDatabaseURL != "" {
		pg, err := bookingStore.NewPostgresStore(ctx, cfg.BookingsDatabaseURL,
			storage.NewPgTracer(collector, cfg.SlowQuery()))
		if err != nil {
			log.Fatalf("failed to connect to bookings database: %v", err)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare bookings table: %v", err)
		}
		stores.BookingStore = pg
		slog.Info("startup_event", "event", "bookings_store", "backend", "postgres")
	}

	seedDeps := orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   uuid.NewString,
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	var sender emailPkg.Sender = emailPkg.NewNoopSender()
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("startup_event", "event", "email_sender", "backend", "resend")
	} else if cfg.IsProduction() {
		slog.Warn("startup_event", "event", "email_disabled", "reason", "CARPA_RESEND_KEY is not set")
	}

	sessions := middleware.NewSessionStore()
	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)

	scheduler, err := orchestrators.NewScheduler(loc,
		orchestrators.Job{
			Name: "booking_reminders",
			Spec: cfg.ReminderCron,
			Run: func(ctx context.Context) error {
				n, err := orchestrators.ExecuteSendReminders(ctx, orchestrators.SendRemindersDeps{
					Bookings: stores.BookingStore,
					Accounts: stores.AccountStore,
					Sender:   sender,
					Now:      func() time.Time { return time.Now().In(loc) },
				})
				if err == nil {
					slog.Info("job_event", "event", "reminders_sent", "count", n)
				}
				return err
			},
		},
		orchestrators.Job{
			Name: "purge",
			Spec: purgeSpec,
			Run: func(context.Context) error {
				expired := sessions.Purge()
				idle := limiter.Sweep(10 * time.Minute)
				slog.Info("job_event", "event", "purged", "sessions", expired, "visitors", idle)
				return nil
			},
		},
	)
	if err != nil {
		log.Fatalf("failed to schedule jobs: %v", err)
	}
	scheduler.Start()

	handler := web.NewMux(stores, collector, web.Options{
		CSRFKey:            cfg.CSRFKeyBytes(),
		SecureCookies:      cfg.IsProduction(),
		RateLimitPerMinute: cfg.RateLimit,
		SlowRequest:        cfg.SlowRequest(),
		Location:           loc,
		Sessions:           sessions,
		Limiter:            limiter,
		Sender:             sender,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Printf("La Carpa %s starting on %s (env=%s, schema=%d)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown_event", "event", "server_shutdown_failed", "error", err.Error())
	}
	<-scheduler.Stop().Done()
	web.WaitForNotifications()
	slog.Info("shutdown_event", "event", "stopped")
}
