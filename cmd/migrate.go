package main

import (
	"fmt"

	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/spf13/cobra"
)

func newMigrateCmd(setup func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables owned by this service in both databases",
		RunE: run(setup, func(cmd *cobra.Command, args []string, e *env) error {
			ctx := cmd.Context()

			appDB, crmDB, err := openDatabases(ctx, e)
			if err != nil {
				return err
			}
			defer closeDatabase(e.logger, "app", appDB)
			defer closeDatabase(e.logger, "crm", crmDB)

			if err := storage.NewAppStore(appDB.Gorm).Migrate(ctx); err != nil {
				return fmt.Errorf("migrating app database: %w", err)
			}
			if err := storage.NewCRMStore(crmDB.Gorm).Migrate(ctx); err != nil {
				return fmt.Errorf("migrating crm database: %w", err)
			}

			e.logger.Info("Migrations applied")
			return nil
		}),
	}
}
