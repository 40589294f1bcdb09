package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/routes"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/analytics"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/auth"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/contributions"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/groups"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/memberships"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/notifications"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/users"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/auth/session"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/config"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/metrics"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/migrate"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/redis"
)

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
		ServiceName: cfg.Service.Name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	workflowMetrics := metrics.NewWorkflow(registry)

	svc, err := buildServices(cfg, logg, dbClient, sessionManager, workflowMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, metrics.NewHTTP(registry), svc),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager, workflowMetrics *metrics.Workflow) (routes.Services, error) {
	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	groupRepo := groups.NewRepository(conn)
	membershipRepo := memberships.NewRepository(conn)
	contributionRepo := contributions.NewRepository(conn)

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:    notifications.NewRepository(conn),
		Logger:  logg,
		Metrics: workflowMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	usersService, err := users.NewService(users.ServiceParams{Repo: userRepo, Logger: logg})
	if err != nil {
		return routes.Services{}, err
	}

	authParams := auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Linker:         usersService,
		JWTConfig:      cfg.JWT,
	}
	if verifier := auth.NewGoogleVerifier(cfg.Google.ClientID); verifier != nil {
		authParams.Verifier = verifier
	} else {
		logg.Warn(context.Background(), "google client id not set; federated login disabled")
	}
	authService, err := auth.NewService(authParams)
	if err != nil {
		return routes.Services{}, err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		UserRepo:       userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	membershipsService, err := memberships.NewService(memberships.ServiceParams{
		Repo:     membershipRepo,
		Groups:   groupRepo,
		Users:    userRepo,
		Notifier: notificationsService,
		Logger:   logg,
		Metrics:  workflowMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	contributionsService, err := contributions.NewService(contributions.ServiceParams{
		Repo:     contributionRepo,
		Groups:   groupRepo,
		Members:  membershipRepo,
		Users:    userRepo,
		Notifier: notificationsService,
		Logger:   logg,
		Metrics:  workflowMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	groupsService, err := groups.NewService(groups.ServiceParams{
		Repo:          groupRepo,
		Tx:            dbClient,
		TxRepo:        func(tx *gorm.DB) groups.Writer { return groupRepo.WithTx(tx) },
		Members:       membershipRepo,
		Contributions: contributionsService,
		Notifications: notificationsService,
		Users:         userRepo,
		Logger:        logg,
		Metrics:       workflowMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(conn), groupRepo, membershipRepo, nil)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authService,
		Register:      registerService,
		Users:         usersService,
		Groups:        groupsService,
		Memberships:   membershipsService,
		Contributions: contributionsService,
		Analytics:     analyticsService,
		Notifications: notificationsService,
	}, nil
}
