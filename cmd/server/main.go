package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"parcel-booking-service/internal/adapters/areas"
	"parcel-booking-service/internal/adapters/cache"
	"parcel-booking-service/internal/adapters/payments"
	"parcel-booking-service/internal/adapters/repositories"
	"parcel-booking-service/internal/api"
	"parcel-booking-service/internal/config"
	"parcel-booking-service/internal/platform/db"
	"parcel-booking-service/internal/platform/obs"
	"parcel-booking-service/internal/ports"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (SQL, redis, card gateway) behind ports and starts the HTTP server.
func main() {
	cfg := config.Load()

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	cfg.LogWarnings(logger)

	if err := run(cfg); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := db.Open(cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Schema init and bootstrap accounts on startup, so a fresh local run works.
	if err := initAndSeed(ctx, conn, dialect, cfg.UserSeedPath); err != nil {
		return err
	}

	users := repositories.NewSQLUserRepository(conn, dialect)
	var roles ports.RoleStore = users
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			zap.L().Warn("redis unreachable, role cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			rc, err := cache.NewRedisRoleCache(client, users, cfg.RoleCacheTTL)
			if err != nil {
				return err
			}
			roles = rc
		}
	}

	catalog, err := areas.LoadYAML(cfg.ServiceAreasPath)
	if err != nil {
		return err
	}
	zap.L().Info("service areas loaded", zap.Int("count", len(catalog.Areas())))

	gateway, err := paymentGateway(cfg)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Parcels:  repositories.NewSQLParcelRepository(conn, dialect),
		Tracking: repositories.NewSQLTrackingRepository(conn, dialect),
		Payments: repositories.NewSQLPaymentRepository(conn, dialect),
		Gateway:  gateway,
		Currency: cfg.PaymentCurrency,
		Roles:    roles,
		Users:    users,
		Riders:   repositories.NewSQLRiderRepository(conn, dialect),
		Areas:    catalog,
		DB:       conn,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("db", string(dialect)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// paymentGateway returns nil when payments are not configured; the
// interface must stay untyped nil so the services report it as disabled.
func paymentGateway(cfg config.Config) (ports.PaymentGateway, error) {
	switch {
	case cfg.PaymentKey != "":
		g, err := payments.NewCardGateway(cfg.PaymentKey, cfg.PaymentURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	case cfg.PaymentGateway == "fake":
		zap.L().Warn("using fake payment gateway")
		return payments.NewFakeGateway(), nil
	default:
		zap.L().Warn("PAYMENT_GATEWAY_KEY not set, payment intents disabled")
		return nil, nil
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := repositories.SeedUsersFromJSON(ctx, conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
