package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/shopfloor/internal/cli/formatter"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/spf13/cobra"
)

func newWorkOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wo",
		Short: "Start, pause and complete work orders",
		Long: `Work orders are addressed by ID or as <order>/<sequence>,
for example MO-0003/2 for the second operation of MO-0003.`,
	}
	cmd.AddCommand(
		newWorkOrderListCmd(app),
		newWorkOrderTransitionCmd(app, "start", "Start or resume a work order", app.WorkOrders.Start),
		newWorkOrderTransitionCmd(app, "pause", "Pause a started work order", app.WorkOrders.Pause),
		newWorkOrderDoneCmd(app),
		newWorkOrderAssignCmd(app),
	)
	return cmd
}

func newWorkOrderListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <order>",
		Short: "List the routing of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.Orders.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOrder(o, app.now()))
			return nil
		},
	}
}

func printTransition(cmd *cobra.Command, res *service.TransitionResult) {
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTransition(res.WorkOrder, res.Order))
}

func newWorkOrderTransitionCmd(app *App, use, short string, apply func(ctx context.Context, id string) (*service.TransitionResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <work-order>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveWorkOrderID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			res, err := apply(cmd.Context(), id)
			if err != nil {
				return err
			}
			printTransition(cmd, res)
			return nil
		},
	}
}

func newWorkOrderDoneCmd(app *App) *cobra.Command {
	var notes string
	var actual int

	cmd := &cobra.Command{
		Use:     "done <work-order>",
		Aliases: []string{"complete"},
		Short:   "Complete a work order; the last one consumes stock",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveWorkOrderID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			req := service.CompleteWorkOrderRequest{Notes: notes}
			if cmd.Flags().Changed("actual") {
				req.ActualDurationMinutes = &actual
			}
			res, err := app.WorkOrders.Complete(cmd.Context(), id, req)
			if err != nil {
				return printBlocked(cmd, err)
			}
			printTransition(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Completion notes")
	cmd.Flags().IntVar(&actual, "actual", 0, "Actual minutes spent (default: time since start)")
	return cmd
}

func newWorkOrderAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <work-order> <operator>",
		Short: "Assign a work order to an operator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveWorkOrderID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			res, err := app.WorkOrders.Assign(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			printTransition(cmd, res)
			return nil
		},
	}
}
