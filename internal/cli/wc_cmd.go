package cli

import (
	"fmt"

	"github.com/alexanderramin/shopfloor/internal/cli/formatter"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newWorkCenterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workcenter",
		Aliases: []string{"wc"},
		Short:   "Manage work centers and their hourly rates",
	}
	cmd.AddCommand(
		newWorkCenterAddCmd(app),
		newWorkCenterListCmd(app),
		newWorkCenterShowCmd(app),
		newWorkCenterUpdateCmd(app),
		newWorkCenterRemoveCmd(app),
		newWorkCenterLoadCmd(app),
	)
	return cmd
}

func parseDecimalFlag(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return d, nil
}

func newWorkCenterAddCmd(app *App) *cobra.Command {
	var name, desc, rate, efficiency string
	var capacity int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a work center",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := parseDecimalFlag("rate", rate)
			if err != nil {
				return err
			}
			req := service.CreateWorkCenterRequest{Name: name, Description: desc, CostPerHour: cost}
			if cmd.Flags().Changed("capacity") {
				req.Capacity = &capacity
			}
			if cmd.Flags().Changed("efficiency") {
				eff, err := parseDecimalFlag("efficiency", efficiency)
				if err != nil {
					return err
				}
				req.Efficiency = &eff
			}
			wc, err := app.WorkCenters.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created work center %s %s at %s/h\n",
				wc.Name, formatter.TruncID(wc.ID), formatter.Money(wc.CostPerHour))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Work center name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVar(&rate, "rate", "0", "Cost per hour")
	cmd.Flags().IntVar(&capacity, "capacity", 1, "Work orders it can run at once")
	cmd.Flags().StringVar(&efficiency, "efficiency", "1", "Efficiency factor")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWorkCenterListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work centers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			centers, err := app.WorkCenters.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkCenters(centers))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive work centers")
	return cmd
}

func newWorkCenterShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <workcenter>",
		Short: "Show one work center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveWorkCenterID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			wc, err := app.WorkCenters.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkCenter(wc))
			return nil
		},
	}
}

func newWorkCenterUpdateCmd(app *App) *cobra.Command {
	var name, desc, rate, efficiency string
	var capacity int
	var active bool

	cmd := &cobra.Command{
		Use:   "update <workcenter>",
		Short: "Change a work center's rate, capacity or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChanged(cmd.LocalFlags()); err != nil {
				return err
			}
			id, err := resolveWorkCenterID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			var req service.UpdateWorkCenterRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("desc") {
				req.Description = &desc
			}
			if flags.Changed("rate") {
				cost, err := parseDecimalFlag("rate", rate)
				if err != nil {
					return err
				}
				req.CostPerHour = &cost
			}
			if flags.Changed("capacity") {
				req.Capacity = &capacity
			}
			if flags.Changed("efficiency") {
				eff, err := parseDecimalFlag("efficiency", efficiency)
				if err != nil {
					return err
				}
				req.Efficiency = &eff
			}
			if flags.Changed("active") {
				req.Active = &active
			}
			wc, err := app.WorkCenters.Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated work center %s\n", wc.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&desc, "desc", "", "New description")
	cmd.Flags().StringVar(&rate, "rate", "", "New cost per hour")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "New capacity")
	cmd.Flags().StringVar(&efficiency, "efficiency", "", "New efficiency factor")
	cmd.Flags().BoolVar(&active, "active", true, "Set active (--active=false deactivates)")
	return cmd
}

func newWorkCenterRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <workcenter>",
		Short: "Deactivate a work center with no open work orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveWorkCenterID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if ok, err := confirm(cmd, app, yes, fmt.Sprintf("Deactivate work center %s?", args[0])); err != nil || !ok {
				return err
			}
			wc, err := app.WorkCenters.Deactivate(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated work center %s\n", wc.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newWorkCenterLoadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Planned and actual work per active work center",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			load, err := app.WorkCenters.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkCenterLoad(load))
			return nil
		},
	}
}
