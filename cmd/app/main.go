// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sellaris/payments/internal/config"
	payAdapters "github.com/sellaris/payments/internal/infra/adapters/payment"
	pg "github.com/sellaris/payments/internal/infra/db/postgres"
	"github.com/sellaris/payments/internal/infra/logging"
	"github.com/sellaris/payments/internal/infra/metrics"
	red "github.com/sellaris/payments/internal/infra/redis"
	"github.com/sellaris/payments/internal/infra/sched"
	"github.com/sellaris/payments/internal/infra/web"
	"github.com/sellaris/payments/internal/infra/worker"
	"github.com/sellaris/payments/internal/usecase"

	"github.com/sellaris/payments/internal/domain/ports/adapter"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	attempts := red.NewAttemptStore(redisClient)

	// ---- Repositories ----
	subRepo := pg.NewSubscriptionRepo(pool)
	pkgRepo := pg.NewPackageRepo(pool)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Payment.Dana.MerchantID == "" {
		gateway = payAdapters.NewNoopGateway(cfg.Payment.Dana.SecretKey)
		logger.Warn().Msg("payment gateway: noop (dev)")
	} else {
		gateway, err = payAdapters.NewDanaGateway(
			cfg.Payment.Dana.MerchantID,
			cfg.Payment.Dana.SecretKey,
			cfg.Payment.Dana.CallbackURL,
			cfg.Payment.Dana.Sandbox,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("dana gateway")
		}
		logger.Info().Bool("sandbox", cfg.Payment.Dana.Sandbox).Msg("payment gateway: dana")
	}

	// ---- Workers pool for post-payment side effects ----
	jobs := worker.NewPool(4, logger)
	jobs.Start(ctx)
	defer jobs.Stop()

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(subRepo, logger)
	pkgUC := usecase.NewPackageUseCase(pkgRepo)
	checkoutUC := usecase.NewCheckoutUseCase(subRepo, pkgRepo, attempts, gateway, cfg.Payment.Dana.MerchantID, cfg.Payment.Dana.CallbackURL, logger)
	payUC := usecase.NewPaymentUseCase(subRepo, attempts, gateway, jobs, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, logger)

	// ---- HTTP server ----
	srv := web.NewServer(checkoutUC, payUC, subUC, pkgUC, statsUC, cfg.Admin.JWTSecret, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Scheduled workers ----
	governor := sched.NewPaymentExpiryWorker(cfg.Scheduler.PaymentExpiryInterval, cfg.Payment.Window, payUC, logger)
	go func() { _ = governor.Run(ctx) }()

	expiry := sched.NewExpiryWorker(cfg.Scheduler.LifecycleInterval, subUC, logger)
	go func() { _ = expiry.Run(ctx) }()

	reminder := sched.NewReminderWorker(cfg.Scheduler.ReminderInterval, cfg.Scheduler.ReminderWindowDays, subUC, logger)
	go func() { _ = reminder.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	cancel()
}
