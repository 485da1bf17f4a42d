package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielsaucedo/partstracker-backend/api/routes"
	"github.com/danielsaucedo/partstracker-backend/internal/attachments"
	"github.com/danielsaucedo/partstracker-backend/internal/auditlog"
	"github.com/danielsaucedo/partstracker-backend/internal/auth"
	"github.com/danielsaucedo/partstracker-backend/internal/ledger"
	"github.com/danielsaucedo/partstracker-backend/internal/parts"
	"github.com/danielsaucedo/partstracker-backend/internal/purchaseorders"
	"github.com/danielsaucedo/partstracker-backend/internal/reports"
	"github.com/danielsaucedo/partstracker-backend/internal/reservations"
	"github.com/danielsaucedo/partstracker-backend/internal/suppliers"
	"github.com/danielsaucedo/partstracker-backend/pkg/config"
	"github.com/danielsaucedo/partstracker-backend/pkg/db"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
	"github.com/danielsaucedo/partstracker-backend/pkg/metrics"
	"github.com/danielsaucedo/partstracker-backend/pkg/migrate"
	"github.com/danielsaucedo/partstracker-backend/pkg/redis"
)

// purgeTokensLoop sweeps expired auth tokens once an hour so the table does
// not grow unbounded.
func purgeTokensLoop(ctx context.Context, svc auth.Service, logg *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.PurgeExpiredTokens(ctx)
			if err != nil {
				logg.Error(ctx, "purging expired tokens", err)
				continue
			}
			if n > 0 {
				logg.Info(logg.WithField(ctx, "purged", n), "expired tokens removed")
			}
		}
	}
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

	// Redis only backs login throttling, so a missing instance degrades to
	// unthrottled logins instead of refusing to boot.
	var rateStore routes.RateLimitStore
	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Warn(context.Background(), "redis unavailable, login rate limiting disabled")
	} else {
		rateStore = redisClient
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	gormDB := dbClient.DB()
	audit := auditlog.NewWriter(gormDB, logg)

	authService, err := auth.NewService(auth.NewRepository(gormDB), cfg.Auth, audit)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	ledgerService, err := ledger.NewService(dbClient, ledger.NewRepository(gormDB), audit)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	partService, err := parts.NewService(parts.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create parts service", err)
		os.Exit(1)
	}
	supplierService, err := suppliers.NewService(suppliers.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create suppliers service", err)
		os.Exit(1)
	}
	orderService, err := purchaseorders.NewService(dbClient, purchaseorders.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase orders service", err)
		os.Exit(1)
	}
	reservationService, err := reservations.NewService(reservations.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}
	attachmentService, err := attachments.NewService(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create attachments service", err)
		os.Exit(1)
	}
	reportService, err := reports.NewService(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	defer purgeCancel()
	go purgeTokensLoop(purgeCtx, authService, logg)

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			httpMetrics,
			rateStore,
			authService,
			ledgerService,
			partService,
			supplierService,
			orderService,
			reservationService,
			attachmentService,
			reportService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
