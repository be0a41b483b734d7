package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/shopfloor/internal/api"
	"github.com/alexanderramin/shopfloor/internal/report"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	var movements int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stock, movements and orders to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := report.Gather(cmd.Context(), app.Stock, app.Orders, movements)
			if err != nil {
				return err
			}
			if out == "" {
				out = data.FileName()
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := report.WriteWorkbook(f, data); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d components, %d orders)\n", out, len(data.Components), len(data.Orders))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default shopfloor_<timestamp>.xlsx)")
	cmd.Flags().IntVar(&movements, "movements", 1000, "Maximum stock movements to include")
	return cmd
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.HTTPAddr
			}
			router := api.NewRouter(api.Services{
				Stock:       app.Stock,
				BOMs:        app.BOMs,
				Orders:      app.Orders,
				WorkOrders:  app.WorkOrders,
				WorkCenters: app.WorkCenters,
				Status:      app.Status,
			}, app.logger())
			return api.Serve(cmd.Context(), addr, router, app.logger())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SHOPFLOOR_HTTP_ADDR)")
	return cmd
}
