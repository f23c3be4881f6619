package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/repositories/csv"
)

func newSeedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <dir>",
		Short: "Import a catalog directory (items, BOMs, warehouses, opening stock)",
		Long: `Import categories, suppliers, contractors, warehouses, nomenclature,
BOM lines and opening stock from CSV files in <dir>. Opening stock is booked
through one completed inventory count per warehouse.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Open(ctx, cmd.OutOrStdout(), true); err != nil {
				return err
			}
			seed, err := csv.NewLoader().LoadDir(args[0])
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			result, err := app.engine.ImportCatalog(ctx, seed)
			if err != nil {
				return err
			}
			return app.printer.Import(result)
		},
	}
}
