package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Stock       service.StockService
	BOMs        service.BOMService
	Orders      service.OrderService
	WorkOrders  service.WorkOrderService
	WorkCenters service.WorkCenterService
	Status      service.StatusService

	Logger   *slog.Logger
	HTTPAddr string

	// IsInteractive reports whether stdin is a terminal. Destructive
	// commands ask for confirmation only when it returns true.
	IsInteractive func() bool
	Now           func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "shopfloor" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var operator string

	root := &cobra.Command{
		Use:           "shopfloor",
		Short:         "Bills of materials, stock and manufacturing orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(service.WithActor(ctx, operator))
		},
	}
	root.PersistentFlags().StringVar(&operator, "as", "", "Operator recorded on stock movements and work orders")

	root.AddCommand(
		newComponentCmd(app),
		newStockCmd(app),
		newBOMCmd(app),
		newOrderCmd(app),
		newWorkOrderCmd(app),
		newWorkCenterCmd(app),
		newStatusCmd(app),
		newExportCmd(app),
		newServeCmd(app),
	)
	return root
}

// requireChanged fails when none of the command's local flags were set, so
// update commands never issue an empty edit.
func requireChanged(fs *pflag.FlagSet) error {
	var names []string
	changed := false
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" {
			return
		}
		names = append(names, "--"+f.Name)
		changed = changed || f.Changed
	})
	if changed {
		return nil
	}
	return fmt.Errorf("nothing to update: pass at least one of %s", strings.Join(names, ", "))
}
