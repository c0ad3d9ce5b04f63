package main

import (
	"context"
	"database/sql"
	"fmt"
	"parcel-booking-service/internal/config"
	"parcel-booking-service/internal/platform/db"
	"parcel-booking-service/internal/platform/obs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "dbtool",
		Short:         "Maintenance commands for the parcel booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := obs.NewLogger(logLevel)
			return err
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedUsersCmd())
	cmd.AddCommand(newAreasCmd())
	cmd.AddCommand(newQuoteCmd())
	return cmd
}

// openDB connects using DATABASE_URL, or the SQLite file at DB_PATH.
func openDB(ctx context.Context) (*sql.DB, db.Dialect, config.Config, error) {
	cfg := config.Load()
	cfg.LogWarnings(zap.L())

	conn, dialect, err := db.Open(cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		return nil, "", cfg, fmt.Errorf("open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, "", cfg, fmt.Errorf("open database: %w", err)
	}
	return conn, dialect, cfg, nil
}
