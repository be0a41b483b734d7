package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/shopfloor/internal/cli/formatter"
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/spf13/cobra"
)

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "order",
		Aliases: []string{"mo"},
		Short:   "Manage manufacturing orders",
	}
	cmd.AddCommand(
		newOrderAddCmd(app),
		newOrderListCmd(app),
		newOrderShowCmd(app),
		newOrderUpdateCmd(app),
		newOrderCancelCmd(app),
		newOrderCompleteCmd(app),
		newOrderRemoveCmd(app),
	)
	return cmd
}

// parseDeadline accepts a date, meaning the end of that day in local time,
// or an RFC 3339 timestamp.
func parseDeadline(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// parseOperations turns "name:minutes[:operator[:workcenter]]" flags into
// routing steps. The work center is left as typed; see resolveOperations.
func parseOperations(raws []string) ([]service.OperationRequest, error) {
	ops := make([]service.OperationRequest, 0, len(raws))
	for _, raw := range raws {
		parts := strings.SplitN(raw, ":", 4)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid operation %q: want name:minutes[:operator[:workcenter]]", raw)
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid minutes in operation %q", raw)
		}
		op := service.OperationRequest{Name: parts[0], DurationMinutes: minutes}
		if len(parts) >= 3 {
			op.AssignedTo = parts[2]
		}
		if len(parts) == 4 {
			op.WorkCenterID = parts[3]
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// resolveOperations swaps work center names for IDs.
func resolveOperations(ctx context.Context, app *App, ops []service.OperationRequest) error {
	for i := range ops {
		if ops[i].WorkCenterID == "" {
			continue
		}
		id, err := resolveWorkCenterID(ctx, app, ops[i].WorkCenterID)
		if err != nil {
			return err
		}
		ops[i].WorkCenterID = id
	}
	return nil
}

// printBlocked writes the shortage table for a blocked completion.
func printBlocked(cmd *cobra.Command, err error) error {
	var blocked *domain.CompletionBlockedError
	if errors.As(err, &blocked) {
		fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatShortages("Completion blocked, nothing was consumed:", blocked.Shortages))
	}
	return err
}

func newOrderAddCmd(app *App) *cobra.Command {
	var product, bomRef, deadline, priority, notes string
	var qty int
	var opSpecs []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a manufacturing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bomID, err := resolveBOMID(ctx, app, bomRef)
			if err != nil {
				return err
			}
			due, err := parseDeadline(deadline)
			if err != nil {
				return err
			}
			ops, err := parseOperations(opSpecs)
			if err != nil {
				return err
			}
			if err := resolveOperations(ctx, app, ops); err != nil {
				return err
			}
			res, err := app.Orders.Create(ctx, service.CreateOrderRequest{
				ProductName: product,
				Quantity:    qty,
				BOMID:       bomID,
				Deadline:    due,
				Priority:    priority,
				Notes:       notes,
				Operations:  ops,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s for %d x %s\n", res.Order.DisplayID(), res.Order.Quantity, res.Order.ProductName)
			fmt.Fprint(out, formatter.FormatShortages("Warning: current stock does not cover this order:", res.StockWarnings))
			return nil
		},
	}
	cmd.Flags().StringVar(&product, "product", "", "Product name")
	cmd.Flags().IntVar(&qty, "qty", 1, "Quantity to build")
	cmd.Flags().StringVar(&bomRef, "bom", "", "BOM name or ID")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&priority, "priority", "", "Low, Medium, High or Urgent")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringArrayVar(&opSpecs, "op", nil, "Operation as name:minutes[:operator[:workcenter]], repeatable")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("bom")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func newOrderListCmd(app *App) *cobra.Command {
	var status, bomRef string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List manufacturing orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter repository.OrderFilter
			if status != "" {
				s, err := domain.ParseOrderStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}
			if bomRef != "" {
				id, err := resolveBOMID(cmd.Context(), app, bomRef)
				if err != nil {
					return err
				}
				filter.BOMID = id
			}
			orders, err := app.Orders.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOrderList(orders, app.now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only orders in this status")
	cmd.Flags().StringVar(&bomRef, "bom", "", "Only orders built from this BOM")
	return cmd
}

func newOrderShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order>",
		Short: "Show an order and its work orders",
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

func newOrderUpdateCmd(app *App) *cobra.Command {
	var product, deadline, priority, notes string
	var qty int

	cmd := &cobra.Command{
		Use:   "update <order>",
		Short: "Edit a Planned order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if err := requireChanged(cmd.LocalFlags()); err != nil {
				return err
			}
			var req service.UpdateOrderRequest
			if flags.Changed("product") {
				req.ProductName = &product
			}
			if flags.Changed("qty") {
				req.Quantity = &qty
			}
			if flags.Changed("deadline") {
				due, err := parseDeadline(deadline)
				if err != nil {
					return err
				}
				req.Deadline = &due
			}
			if flags.Changed("priority") {
				req.Priority = &priority
			}
			if flags.Changed("notes") {
				req.Notes = &notes
			}
			o, err := app.Orders.Update(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", o.DisplayID())
			return nil
		},
	}
	cmd.Flags().StringVar(&product, "product", "", "Product name")
	cmd.Flags().IntVar(&qty, "qty", 0, "Quantity to build")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&priority, "priority", "", "Low, Medium, High or Urgent")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func newOrderCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order>",
		Short: "Cancel an order and its open work orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.Orders.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", o.DisplayID(), formatter.OrderStatusPill(o.Status))
			return nil
		},
	}
}

func newOrderCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <order>",
		Short: "Complete every open work order and consume stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.Orders.Complete(cmd.Context(), args[0])
			if err != nil {
				return printBlocked(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", o.DisplayID(), formatter.OrderStatusPill(o.Status))
			return nil
		},
	}
}

func newOrderRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <order>",
		Short: "Delete a Planned or Canceled order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, err := confirm(cmd, app, yes, fmt.Sprintf("Delete order %s?", args[0])); err != nil || !ok {
				return err
			}
			if err := app.Orders.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted order %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
