package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CrowderSoup/kanban/config"
	"github.com/CrowderSoup/kanban/database"
)

var (
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kanban",
	Short: "Kanban boards server",
	Long: `kanban serves boards, columns and tasks over a JSON API.
Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(envFile); err != nil {
			return fmt.Errorf("error loading %s: %w", envFile, err)
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		return cfg.ConfigureLogging()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to a .env file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(boardsCmd)
}

// openClient returns the configured database client and a function that
// releases it.
func openClient(ctx context.Context) (database.Client, func() error, error) {
	if cfg.Store == "memory" {
		return database.NewMemoryClient(), func() error { return nil }, nil
	}
	db, dialect, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	return database.NewSQLClient(db, dialect), db.Close, nil
}

func openDB(ctx context.Context) (*sql.DB, database.Dialect, error) {
	if cfg.Store == "postgres" {
		db, err := database.InitDB(ctx, database.Postgres, cfg.DatabaseURL)
		return db, database.Postgres, err
	}
	db, err := database.InitDB(ctx, database.SQLite, cfg.DatabasePath)
	return db, database.SQLite, err
}
