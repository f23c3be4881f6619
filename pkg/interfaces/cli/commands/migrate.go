package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/config"
)

func newMigrateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Open(ctx, cmd.OutOrStdout(), true); err != nil {
				return err
			}
			if app.pg == nil {
				return fmt.Errorf("migrate needs storage.driver=%s, got %s", config.DriverPostgres, app.cfg.Storage.Driver)
			}
			if err := app.pg.Migrate(ctx); err != nil {
				return err
			}
			return app.printer.Message("schema is up to date")
		},
	}
}
