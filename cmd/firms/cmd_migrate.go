package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		// opening the database migrates it
		b, err := openBase()
		if err != nil {
			return err
		}
		defer b.close()

		b.log.Info("Database migrations completed successfully", "driver", b.cfg.DatabaseDriver)
		return nil
	},
}
