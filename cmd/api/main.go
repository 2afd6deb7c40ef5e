package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	appdb "github.com/diagnosis/luxstay-hotel/internal/database"
	"github.com/diagnosis/luxstay-hotel/internal/domain"
	apphttp "github.com/diagnosis/luxstay-hotel/internal/http"
	"github.com/diagnosis/luxstay-hotel/internal/notify"
	"github.com/diagnosis/luxstay-hotel/internal/platform/mailer"
	"github.com/diagnosis/luxstay-hotel/internal/platform/ratelimit"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/internal/repo/source"
	syncer "github.com/diagnosis/luxstay-hotel/internal/sync"
	"github.com/diagnosis/luxstay-hotel/pkg/config"
	"github.com/diagnosis/luxstay-hotel/pkg/database"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := appdb.Migrate(ctx, pool); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	sourcePool, err := database.ConnectSource(ctx, cfg.Source)
	if err != nil {
		logger.Error("Failed to connect to source database", "error", err)
		os.Exit(1)
	}
	defer sourcePool.Close()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	limiter, err := ratelimit.NewLimiter(cfg.Redis.URL, 10, time.Minute)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer limiter.Close()

	roomsRepo := postgres.NewRoomsRepo(pool)
	credentialsRepo := postgres.NewCredentialsRepo(pool)
	sessionsRepo := postgres.NewSessionsRepo(pool)
	staysRepo := postgres.NewStaysRepo(pool)
	menuRepo := postgres.NewMenuRepo(pool)
	ordersRepo := postgres.NewOrdersRepo(pool)
	housekeepingRepo := postgres.NewHousekeepingRepo(pool)
	eventsRepo := postgres.NewEventsRepo(pool)
	adminsRepo := postgres.NewAdminsRepo(pool)
	sourceRepo := source.NewRepo(sourcePool, cfg.Source.Table)

	bootstrapAdmin(ctx, adminsRepo)

	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailerSendMailer(cfg.Email.MailerSendKey, "LuxStay", cfg.Email.SMTPFrom)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
	}

	notifier := notify.New(bus, mail, cfg.Email.StaffInbox)
	if err := notifier.Start(); err != nil {
		logger.Error("Failed to start event notifier", "error", err)
		os.Exit(1)
	}

	reconciler := syncer.NewReconciler(sourceRepo, roomsRepo, sessionsRepo, credentialsRepo, bus, cfg.Sync.Interval, cfg.Sync.SessionTTL)
	go reconciler.Run(ctx)

	router := apphttp.NewRouter(apphttp.Deps{
		Cfg:          cfg,
		Rooms:        roomsRepo,
		Credentials:  credentialsRepo,
		Sessions:     sessionsRepo,
		Stays:        staysRepo,
		Menu:         menuRepo,
		Orders:       ordersRepo,
		Housekeeping: housekeepingRepo,
		Events:       eventsRepo,
		Admins:       adminsRepo,
		Bus:          bus,
		Limiter:      limiter,
		Reconciler:   reconciler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Server.Port, "sync_interval", cfg.Sync.Interval.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// bootstrapAdmin seeds the first staff account from the environment so a
// fresh deployment is reachable. It only ever runs against an empty table.
func bootstrapAdmin(ctx context.Context, admins postgres.AdminsRepo) {
	email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	count, err := admins.Count(ctx)
	if err != nil {
		logger.Error("Failed to count admin accounts", "error", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash bootstrap password", "error", err)
		return
	}
	req := &domain.AdminCreateRequest{Email: email, Name: "Administrator", Role: string(domain.RoleAdmin), Password: password}
	req.Normalize()
	if _, err := admins.Create(ctx, req, string(hash)); err != nil {
		logger.Error("Failed to create bootstrap admin", "error", err)
		return
	}
	logger.Info("Created bootstrap admin account", "email", req.Email)
}
