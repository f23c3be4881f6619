package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func newStockCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reserve <node-id> <qty>",
		Short: "Reserve free stock for a tree node, oldest batches first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Open(ctx, cmd.OutOrStdout(), false); err != nil {
				return err
			}
			reservations, err := app.engine.ReserveStock(ctx, args[0], qty)
			if err != nil {
				return err
			}
			return app.printer.Reservations(reservations)
		},
	})
	cmd.AddCommand(newStockPositionsCommand(app))
	return cmd
}

func newStockPositionsCommand(app *App) *cobra.Command {
	var warehouseID string
	cmd := &cobra.Command{
		Use:   "positions [nomenclature-id]",
		Short: "Show on-hand, reserved and available stock of an item or a warehouse",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (warehouseID == "") {
				return fmt.Errorf("give either a nomenclature id or --warehouse")
			}
			ctx := cmd.Context()
			if err := app.Open(ctx, cmd.OutOrStdout(), false); err != nil {
				return err
			}
			var positions []*entities.StockPosition
			var err error
			if warehouseID != "" {
				positions, err = app.engine.WarehouseStock(ctx, warehouseID)
			} else {
				positions, err = app.engine.StockPositions(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return app.printer.Positions(positions)
		},
	}
	cmd.Flags().StringVarP(&warehouseID, "warehouse", "w", "", "list every position of this warehouse")
	return cmd
}
