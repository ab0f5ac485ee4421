package main

import (
	"daily-routine-service/internal/config"
	"daily-routine-service/internal/platform/logging"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "routinectl",
	Short: "Manage the daily routine database and plan routines from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		logger, err := logging.New(config.Get("APP_ENV", "development"), config.Get("LOG_LEVEL", "warn"))
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.Get("DB_PATH", "data/app.db"), "SQLite database path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
