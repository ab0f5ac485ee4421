package main

import (
	"daily-routine-service/internal/adapters/cache"
	"daily-routine-service/internal/adapters/repositories"
	"daily-routine-service/internal/config"
	"daily-routine-service/internal/platform/db"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	seedPath    string
	databaseURL string
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the SQLite schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(conn); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema ready in %s\n", dbPath)
		return nil
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all categories with the seed data",
	Long: `Replace all stored categories with the seed data.

Without --path the built-in Puerto Peñasco categories are loaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(conn); err != nil {
			return err
		}
		if err := repositories.SeedFromJSON(cmd.Context(), conn, seedPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seeding complete.")
		return nil
	},
}

var dbInitCacheCmd = &cobra.Command{
	Use:   "init-cache",
	Short: "Create the Postgres geocode cache table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if databaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}

		pg, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := cache.InitPostgresSchema(cmd.Context(), pg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Geocode cache table ready.")
		return nil
	},
}

func init() {
	dbSeedCmd.Flags().StringVar(&seedPath, "path", config.Get("SEED_PATH", ""), "Seed JSON file (default: built-in categories)")
	dbInitCacheCmd.Flags().StringVar(&databaseURL, "database-url", config.Get("DATABASE_URL", ""), "Postgres connection URL")

	dbCmd.AddCommand(dbInitCmd, dbSeedCmd, dbInitCacheCmd)
	rootCmd.AddCommand(dbCmd)
}
