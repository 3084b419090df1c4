package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/syedmusab/rvm-backend/internal/auth/otp"
	"github.com/syedmusab/rvm-backend/internal/auth/token"
	feedbackservice "github.com/syedmusab/rvm-backend/internal/feedback/service"
	feedbackstore "github.com/syedmusab/rvm-backend/internal/feedback/store"
	ledgermetrics "github.com/syedmusab/rvm-backend/internal/ledger/metrics"
	ledgerservice "github.com/syedmusab/rvm-backend/internal/ledger/service"
	ledgerstore "github.com/syedmusab/rvm-backend/internal/ledger/store"
	notificationservice "github.com/syedmusab/rvm-backend/internal/notification/service"
	notificationstore "github.com/syedmusab/rvm-backend/internal/notification/store"
	"github.com/syedmusab/rvm-backend/internal/platform/config"
	"github.com/syedmusab/rvm-backend/internal/platform/httpserver"
	"github.com/syedmusab/rvm-backend/internal/platform/logger"
	"github.com/syedmusab/rvm-backend/internal/platform/metrics"
	mongoplatform "github.com/syedmusab/rvm-backend/internal/platform/mongo"
	pgplatform "github.com/syedmusab/rvm-backend/internal/platform/postgres"
	redisplatform "github.com/syedmusab/rvm-backend/internal/platform/redis"
	profileservice "github.com/syedmusab/rvm-backend/internal/profile/service"
	profilestore "github.com/syedmusab/rvm-backend/internal/profile/store"
	httptransport "github.com/syedmusab/rvm-backend/internal/transport/http"
	"github.com/syedmusab/rvm-backend/pkg/deeplink"
	"github.com/syedmusab/rvm-backend/pkg/email"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	st, cleanup, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	otpStore, redisCleanup, err := openOTPStore(cfg, log)
	if err != nil {
		return err
	}
	defer redisCleanup()

	var sender email.Sender
	if cfg.SMTPHost != "" && cfg.SMTPFrom != "" {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPass)
	} else {
		log.Warn("SMTP not configured, reset codes will only be logged")
		sender = email.NewLogSender(log)
	}

	directory := profileservice.NewDirectory(st.profiles)
	ledgerSvc := ledgerservice.New(st.events, directory,
		ledgerservice.WithLogger(log),
		ledgerservice.WithMetrics(ledgermetrics.New()),
		ledgerservice.WithStoreTimeout(cfg.StoreTimeout),
	)
	profileSvc := profileservice.New(st.profiles, ledgerSvc,
		profileservice.WithLogger(log),
		profileservice.WithStoreTimeout(cfg.StoreTimeout),
	)
	notificationSvc := notificationservice.New(st.notifications,
		notificationservice.WithLogger(log),
		notificationservice.WithStoreTimeout(cfg.StoreTimeout),
	)
	feedbackSvc := feedbackservice.New(st.feedbacks,
		feedbackservice.WithStoreTimeout(cfg.StoreTimeout),
	)

	otpSvc := otp.New(otpStore, sender, otp.WithLogger(log))
	tokens := token.NewJWTService(cfg.JWTSigningKey, "rvm-backend", cfg.SessionTTL)

	deepLinks, err := deeplink.NewDefault()
	if err != nil {
		return fmt.Errorf("deep link generator: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Ledger:       ledgerSvc,
		Profiles:     profileSvc,
		Notification: notificationSvc,
		Feedback:     feedbackSvc,
		OTP:          otpSvc,
		Tokens:       tokens,
		Validator:    token.NewValidatorAdapter(tokens),
		DeepLinks:    deepLinks,
		Logger:       log,
		Metrics:      metrics.New(),
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting rvm-backend",
			"addr", cfg.Addr,
			"store_backend", string(cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// stores bundles one store per domain, all backed by the same engine.
type stores struct {
	events        ledgerstore.EventStore
	profiles      profilestore.ProfileStore
	notifications notificationstore.NotificationStore
	feedbacks     feedbackstore.FeedbackStore
}

func openStores(ctx context.Context, cfg config.Config) (*stores, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return &stores{
			events:        ledgerstore.NewInMemory(),
			profiles:      profilestore.NewInMemory(),
			notifications: notificationstore.NewInMemory(),
			feedbacks:     feedbackstore.NewInMemory(),
		}, func() {}, nil

	case config.BackendPostgres:
		db, err := pgplatform.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pgplatform.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return &stores{
			events:        ledgerstore.NewPostgres(db),
			profiles:      profilestore.NewPostgres(db),
			notifications: notificationstore.NewPostgres(db),
			feedbacks:     feedbackstore.NewPostgres(db),
		}, func() { db.Close() }, nil

	case config.BackendMongo:
		db, disconnect, err := mongoplatform.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = disconnect(shutdownCtx)
		}
		return &stores{
			events:        ledgerstore.NewMongo(db),
			profiles:      profilestore.NewMongo(db),
			notifications: notificationstore.NewMongo(db),
			feedbacks:     feedbackstore.NewMongo(db),
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// openOTPStore prefers Redis so reset challenges survive restarts and are
// shared across replicas. Without Redis the memory store still gives a
// working single-node flow.
func openOTPStore(cfg config.Config, log *slog.Logger) (otp.ChallengeStore, func(), error) {
	client, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	if client == nil {
		log.Info("redis not configured, using in-memory OTP store")
		return otp.NewInMemoryStore(), func() {}, nil
	}
	return otp.NewRedisStore(client.Client), func() { _ = client.Close() }, nil
}
