package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/glacierhockey/rinkreg-backend/api/routes"
	"github.com/glacierhockey/rinkreg-backend/internal/discounts"
	"github.com/glacierhockey/rinkreg-backend/internal/payments"
	"github.com/glacierhockey/rinkreg-backend/internal/pricing"
	"github.com/glacierhockey/rinkreg-backend/internal/programs"
	"github.com/glacierhockey/rinkreg-backend/internal/registrations"
	"github.com/glacierhockey/rinkreg-backend/internal/waitlists"
	"github.com/glacierhockey/rinkreg-backend/pkg/config"
	"github.com/glacierhockey/rinkreg-backend/pkg/db"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
	"github.com/glacierhockey/rinkreg-backend/pkg/migrate"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox"
	"github.com/glacierhockey/rinkreg-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()

	programsSvc, err := programs.NewService(programs.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create program service", err)
		os.Exit(1)
	}

	discountRepo := discounts.NewRepository(gormDB)
	discountSvc, err := discounts.NewService(discountRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}

	calculator, err := pricing.NewCalculator(discountSvc, discountSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing calculator", err)
		os.Exit(1)
	}

	registrationRepo := registrations.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	registrationSvc, err := registrations.NewService(
		dbClient,
		registrationRepo,
		programsSvc,
		calculator,
		discountSvc,
		paymentRepo,
		outboxSvc,
		registrations.Config{
			MaxInstallments:    cfg.Payments.MaxInstallments,
			InstallmentCadence: cfg.Payments.InstallmentCadence,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create registration service", err)
		os.Exit(1)
	}

	waitlistSvc, err := waitlists.NewService(
		dbClient,
		waitlists.NewRepository(gormDB),
		programsSvc,
		registrationRepo,
		outboxSvc,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create waitlist service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Idempotency:   redisClient,
		Programs:      programsSvc,
		Discounts:     discountSvc,
		Registrations: registrationSvc,
		Waitlists:     waitlistSvc,
		Payments:      paymentRepo,
		DLQ:           outbox.NewDLQRepository(gormDB),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
