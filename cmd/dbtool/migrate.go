package main

import (
	"fmt"
	"parcel-booking-service/internal/adapters/areas"
	"parcel-booking-service/internal/adapters/repositories"
	"parcel-booking-service/internal/config"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, dialect, _, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", dialect)
			return nil
		},
	}
}

func newSeedUsersCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Upsert bootstrap accounts and roles from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, dialect, cfg, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			if path == "" {
				path = cfg.UserSeedPath
			}
			if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
				return err
			}
			if err := repositories.SeedUsersFromJSON(cmd.Context(), conn, dialect, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded users from %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "seed file (default USER_SEED_PATH)")
	return cmd
}

func newAreasCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Validate the service area file and list covered districts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.Get("SERVICE_AREAS_PATH", "data/seeds/service_areas.yaml")
			}
			catalog, err := areas.LoadYAML(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			list := catalog.Areas()
			if len(list) == 0 {
				fmt.Fprintf(out, "%s: no areas, every district is accepted\n", path)
				return nil
			}
			for _, a := range list {
				fmt.Fprintf(out, "%-12s %-14s %d areas\n", a.Region, a.District, len(a.CoveredArea))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "coverage file (default SERVICE_AREAS_PATH)")
	return cmd
}
