package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/cli/formatter"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newComponentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "component",
		Aliases: []string{"comp"},
		Short:   "Manage components",
	}
	cmd.AddCommand(
		newComponentAddCmd(app),
		newComponentListCmd(app),
		newComponentShowCmd(app),
		newComponentUpdateCmd(app),
		newComponentCostCmd(app),
		newComponentRemoveCmd(app),
	)
	return cmd
}

func newComponentAddCmd(app *App) *cobra.Command {
	var name, cost, supplier string
	var qty, reorder int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a component with its opening stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unitCost, err := decimal.NewFromString(cost)
			if err != nil {
				return fmt.Errorf("invalid cost %q: %w", cost, err)
			}
			req := service.CreateComponentRequest{
				Name:           name,
				QuantityOnHand: qty,
				UnitCost:       unitCost,
				Supplier:       supplier,
			}
			if cmd.Flags().Changed("reorder") {
				req.ReorderLevel = &reorder
			}
			c, err := app.Stock.CreateComponent(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created component %s %s\n", c.Name, formatter.TruncID(c.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Component name")
	cmd.Flags().IntVar(&qty, "qty", 0, "Opening quantity on hand")
	cmd.Flags().StringVar(&cost, "cost", "0", "Unit cost")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Supplier")
	cmd.Flags().IntVar(&reorder, "reorder", 0, "Reorder level (default 10)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newComponentListCmd(app *App) *cobra.Command {
	var low bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List components and stock levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := app.Stock.List
			if low {
				list = app.Stock.LowStock
			}
			components, err := list(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatComponents(components))
			return nil
		},
	}
	cmd.Flags().BoolVar(&low, "low", false, "Only components under their reorder level")
	return cmd
}

func newComponentShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <component>",
		Short: "Show one component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveComponentID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			c, err := app.Stock.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatComponent(c))
			return nil
		},
	}
}

func newComponentUpdateCmd(app *App) *cobra.Command {
	var name, supplier string
	var reorder int

	cmd := &cobra.Command{
		Use:   "update <component>",
		Short: "Change a component's name, supplier or reorder level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChanged(cmd.LocalFlags()); err != nil {
				return err
			}
			id, err := resolveComponentID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			var req service.UpdateComponentRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("supplier") {
				req.Supplier = &supplier
			}
			if cmd.Flags().Changed("reorder") {
				req.ReorderLevel = &reorder
			}
			c, err := app.Stock.UpdateComponent(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated component %s\n", c.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&supplier, "supplier", "", "New supplier")
	cmd.Flags().IntVar(&reorder, "reorder", 0, "New reorder level")
	return cmd
}

func newComponentCostCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cost <component> <unit-cost>",
		Short: "Change a component's unit cost",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveComponentID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			cost, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid cost %q: %w", args[1], err)
			}
			c, err := app.Stock.AdjustUnitCost(cmd.Context(), id, cost)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now costs %s\n", c.Name, formatter.Money(c.UnitCost))
			return nil
		},
	}
}

func newComponentRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <component>",
		Short: "Delete a component no BOM references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveComponentID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if ok, err := confirm(cmd, app, yes, fmt.Sprintf("Delete component %s?", args[0])); err != nil || !ok {
				return err
			}
			if err := app.Stock.DeleteComponent(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted component %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on interactive terminals. Non-interactive
// runs and --yes proceed without asking.
func confirm(cmd *cobra.Command, app *App, yes bool, question string) (bool, error) {
	if yes || !app.interactive() {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "y" || answer == "yes" {
		return true, nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
	return false, nil
}
