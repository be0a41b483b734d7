package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/shopfloor/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStockCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Receive, issue and count stock",
	}
	cmd.AddCommand(
		newStockMoveCmd(app, "in", "Receive stock", "Stock received", app.Stock.Credit),
		newStockMoveCmd(app, "out", "Issue stock", "Stock issued", app.Stock.Debit),
		newStockMoveCmd(app, "count", "Record a physical count", "Stock count", app.Stock.Adjust),
		newStockMovesCmd(app),
	)
	return cmd
}

type stockMove func(ctx context.Context, componentID string, qty int, reference string) (int, error)

func newStockMoveCmd(app *App, use, short, defaultRef string, move stockMove) *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   use + " <component> <quantity>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveComponentID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			balance, err := move(cmd.Context(), id, qty, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: balance %d\n", args[0], balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&ref, "ref", defaultRef, "Reference recorded on the movement")
	return cmd
}

func newStockMovesCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "moves [component]",
		Short: "List stock movements, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				var err error
				if id, err = resolveComponentID(cmd.Context(), app, args[0]); err != nil {
					return err
				}
			}
			movements, err := app.Stock.Movements(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMovements(movements))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum movements to show")
	return cmd
}
