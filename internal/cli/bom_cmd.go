package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/cli/formatter"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/spf13/cobra"
)

func newBOMCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bom",
		Short: "Manage bills of materials",
	}
	cmd.AddCommand(
		newBOMAddCmd(app),
		newBOMListCmd(app),
		newBOMShowCmd(app),
		newBOMReviseCmd(app),
		newBOMHistoryCmd(app),
		newBOMRemoveCmd(app),
	)
	return cmd
}

// parseLines turns "component:qty[:notes]" flags into BOM lines. The
// component part may be a name or an ID.
func parseLines(ctx context.Context, app *App, raws []string) ([]service.BOMLineRequest, error) {
	lines := make([]service.BOMLineRequest, 0, len(raws))
	for _, raw := range raws {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid line %q: want component:qty[:notes]", raw)
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in line %q", raw)
		}
		id, err := resolveComponentID(ctx, app, parts[0])
		if err != nil {
			return nil, err
		}
		line := service.BOMLineRequest{ComponentID: id, QuantityRequired: qty}
		if len(parts) == 3 {
			line.Notes = parts[2]
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func newBOMAddCmd(app *App) *cobra.Command {
	var name, desc string
	var lineSpecs []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Publish version 1 of a new BOM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := parseLines(cmd.Context(), app, lineSpecs)
			if err != nil {
				return err
			}
			b, err := app.BOMs.Create(cmd.Context(), service.CreateBOMRequest{
				Name:        name,
				Description: desc,
				Lines:       lines,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created BOM %s v%d %s\n", b.Name, b.Version, formatter.TruncID(b.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "BOM name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringArrayVar(&lineSpecs, "line", nil, "Line as component:qty[:notes], repeatable")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBOMListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bills of materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boms, err := app.BOMs.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBOMList(boms))
			return nil
		},
	}
}

func newBOMShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <bom>",
		Short: "Show a BOM with line costs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveBOMID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			b, err := app.BOMs.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBOM(b))
			return nil
		},
	}
}

func newBOMReviseCmd(app *App) *cobra.Command {
	var desc string
	var lineSpecs []string

	cmd := &cobra.Command{
		Use:   "revise <bom>",
		Short: "Publish a new version of a BOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveBOMID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			lines, err := parseLines(cmd.Context(), app, lineSpecs)
			if err != nil {
				return err
			}
			req := service.ReviseBOMRequest{Lines: lines}
			if cmd.Flags().Changed("desc") {
				req.Description = &desc
			}
			b, err := app.BOMs.Revise(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s v%d %s\n", b.Name, b.Version, formatter.TruncID(b.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&desc, "desc", "", "New description (kept when omitted)")
	cmd.Flags().StringArrayVar(&lineSpecs, "line", nil, "Line as component:qty[:notes], repeatable")
	return cmd
}

func newBOMHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <name>",
		Short: "List every version of a BOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := app.BOMs.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBOMList(versions))
			return nil
		},
	}
}

func newBOMRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <bom>",
		Short: "Archive a BOM version no open order uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveBOMID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if ok, err := confirm(cmd, app, yes, fmt.Sprintf("Archive BOM %s?", args[0])); err != nil || !ok {
				return err
			}
			if err := app.BOMs.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived BOM %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
