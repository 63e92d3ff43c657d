package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/pawfund/pawfund-backend/api/controllers"
	"github.com/pawfund/pawfund-backend/api/routes"
	"github.com/pawfund/pawfund-backend/internal/adoptions"
	"github.com/pawfund/pawfund-backend/internal/auth"
	"github.com/pawfund/pawfund-backend/internal/cart"
	"github.com/pawfund/pawfund-backend/internal/donations"
	"github.com/pawfund/pawfund-backend/internal/events"
	"github.com/pawfund/pawfund-backend/internal/media"
	"github.com/pawfund/pawfund-backend/internal/notifications"
	"github.com/pawfund/pawfund-backend/internal/pets"
	"github.com/pawfund/pawfund-backend/internal/screening"
	"github.com/pawfund/pawfund-backend/internal/users"
	"github.com/pawfund/pawfund-backend/pkg/auth/session"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db"
	"github.com/pawfund/pawfund-backend/pkg/email"
	"github.com/pawfund/pawfund-backend/pkg/env"
	"github.com/pawfund/pawfund-backend/pkg/instance"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/metrics"
	"github.com/pawfund/pawfund-backend/pkg/migrate"
	"github.com/pawfund/pawfund-backend/pkg/paypal"
	"github.com/pawfund/pawfund-backend/pkg/redis"
	"github.com/pawfund/pawfund-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

type objectStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	PublicURL(name string) string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pingers := map[string]controllers.Pinger{"db": dbClient, "redis": redisClient}
	var store objectStore = media.DisabledStore{}
	if strings.TrimSpace(cfg.GCS.BucketName) != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		store = gcsClient
		pingers["gcs"] = gcsClient
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, image uploads disabled")
	}

	svc, err := buildServices(cfg, logg, dbClient, sessionManager, store, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Infra{
			Store:    redisClient,
			Pingers:  pingers,
			Metrics:  metrics.NewHTTPMetrics(registry),
			Gatherer: registry,
		}, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	closers := []namedCloser{{name: "redis", closer: redisClient}, {name: "database", closer: dbClient}}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			logShutdownErrors(ctx, logg, shutdown(context.Background(), nil, closers...))
			os.Exit(1)
		}
		logShutdownErrors(ctx, logg, shutdown(context.Background(), nil, closers...))
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logShutdownErrors(ctx, logg, shutdown(shutdownCtx, server, closers...))
	}
}

type httpShutdowner interface {
	Shutdown(ctx context.Context) error
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// shutdown drains the server, then closes every store even when an earlier
// step fails. The returned error aggregates all failures.
func shutdown(ctx context.Context, server httpShutdowner, closers ...namedCloser) error {
	var err error
	if server != nil {
		if serr := server.Shutdown(ctx); serr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", serr))
		}
	}
	for _, c := range closers {
		if c.closer == nil {
			continue
		}
		if cerr := c.closer.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", c.name, cerr))
		}
	}
	return err
}

func logShutdownErrors(ctx context.Context, logg *logger.Logger, err error) {
	for _, e := range multierr.Errors(err) {
		logg.Error(ctx, "shutdown step failed", e)
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	sessionManager *session.Manager,
	store objectStore,
	registry prometheus.Registerer,
) (routes.Services, error) {
	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	petRepo := pets.NewRepository(conn)

	notificationService, err := notifications.NewService(notifications.ServiceParams{
		Repository: notifications.NewRepository(conn),
		Sender:     email.NewSender(cfg.Sendgrid, cfg.FeatureFlags, logg),
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	mediaService, err := media.NewService(store, cfg.GCS.MaxUploadMB)
	if err != nil {
		return routes.Services{}, err
	}

	cartService, err := cart.NewService(cart.NewRepository(conn), dbClient, petRepo)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		CartMerger:     cartService,
		JWTConfig:      cfg.JWT,
		LoginConfig:    cfg.Login,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:                 dbClient,
		Mailer:             notificationService,
		PasswordConfig:     cfg.Password,
		VerificationConfig: cfg.Verification,
		PublicURL:          cfg.App.PublicURL,
	})
	if err != nil {
		return routes.Services{}, err
	}

	userService, err := users.NewService(userRepo)
	if err != nil {
		return routes.Services{}, err
	}

	petService, err := pets.NewService(pets.ServiceParams{
		Repository: petRepo,
		Users:      userRepo,
		Images:     mediaService,
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	screeningService, err := screening.NewService(screening.NewRepository(conn), cfg.Screening)
	if err != nil {
		return routes.Services{}, err
	}

	adoptionService, err := adoptions.NewService(adoptions.ServiceParams{
		Repository: adoptions.NewRepository(conn),
		Pets:       petRepo,
		Users:      userRepo,
		Screening:  screeningService,
		Cart:       cartService,
		Notifier:   notificationService,
		Metrics:    metrics.NewAdmissionMetrics(registry),
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	eventService, err := events.NewService(events.ServiceParams{
		Events:         events.NewRepository(conn),
		Collaborations: events.NewCollaborationRepository(conn),
		Users:          userRepo,
		Notifier:       notificationService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	publicURL := strings.TrimRight(cfg.App.PublicURL, "/")
	donationService, err := donations.NewService(donations.ServiceParams{
		Repository: donations.NewRepository(conn),
		Users:      userRepo,
		Gateway: paypal.New(cfg.PayPal, paypal.Options{
			ReturnURL: publicURL + "/api/donations/success",
			CancelURL: publicURL + "/api/donations/cancel",
		}, logg),
		Notifier: notificationService,
		Config:   cfg.Donations,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authService,
		Register:      registerService,
		Sessions:      sessionManager,
		Users:         userService,
		Pets:          petService,
		Screening:     screeningService,
		Cart:          cartService,
		Adoptions:     adoptionService,
		Events:        eventService,
		Donations:     donationService,
		Notifications: notificationService,
	}, nil
}
