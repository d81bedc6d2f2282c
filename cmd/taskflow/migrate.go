package main

import (
	"errors"

	"github.com/spf13/cobra"

	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/repositories"
)

func migrateCmd(flags *rootFlags) *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return errors.New("migrations only apply to the postgres driver")
			}
			ctx := background(cmd)
			db, err := repositories.Open(ctx, cfg.Database.DSN, repositories.DBOptions{})
			if err != nil {
				return err
			}
			defer db.Close()

			if status {
				return repositories.MigrationStatus(ctx, db)
			}
			if err := repositories.Migrate(ctx, db); err != nil {
				return err
			}
			logger.Info("[migrate] done")
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of applying")
	return cmd
}
