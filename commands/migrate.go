package commands

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store == "memory" {
			return errors.New("nothing to migrate for STORE=memory")
		}
		db, _, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		log.WithField("store", cfg.Store).Info("Migrations applied")
		return nil
	},
}
