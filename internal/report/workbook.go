// Package report renders shop floor data as an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/xuri/excelize/v2"
)

const (
	SheetStock     = "Stock"
	SheetMovements = "Movements"
	SheetOrders    = "Orders"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Data is everything the workbook shows.
type Data struct {
	Components  []*domain.Component
	Movements   []*domain.StockMovement
	Orders      []*domain.ManufacturingOrder
	GeneratedAt time.Time
}

// Gather reads the current ledger and orders through the services.
func Gather(ctx context.Context, stock service.StockService, orders service.OrderService, movementLimit int) (Data, error) {
	components, err := stock.List(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("listing components: %w", err)
	}
	movements, err := stock.Movements(ctx, "", movementLimit)
	if err != nil {
		return Data{}, fmt.Errorf("listing movements: %w", err)
	}
	mos, err := orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return Data{}, fmt.Errorf("listing orders: %w", err)
	}
	return Data{Components: components, Movements: movements, Orders: mos, GeneratedAt: time.Now().UTC()}, nil
}

// FileName is the suggested attachment name.
func (d Data) FileName() string {
	return fmt.Sprintf("shopfloor_%s.xlsx", d.GeneratedAt.Format("20060102_150405"))
}

// WriteWorkbook streams the workbook to w.
func WriteWorkbook(w io.Writer, d Data) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Build lays out the Stock, Movements and Orders sheets.
func Build(d Data) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetStock); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetMovements, SheetOrders} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name    string
		headers []string
		widths  []float64
		rows    [][]any
	}{
		{SheetStock, stockHeaders, []float64{38, 24, 10, 12, 14, 12, 18, 10}, stockRows(d.Components)},
		{SheetMovements, movementHeaders, []float64{20, 24, 12, 10, 14, 30, 14}, movementRows(d.Movements)},
		{SheetOrders, orderHeaders, []float64{10, 24, 8, 20, 8, 10, 12, 10, 20}, orderRows(d.Orders)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.widths, s.rows, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	return f, nil
}

var (
	stockHeaders    = []string{"ID", "Name", "On Hand", "Unit Cost", "Stock Value", "Reorder At", "Supplier", "Low Stock"}
	movementHeaders = []string{"When", "Component", "Type", "Quantity", "Balance After", "Reference", "By"}
	orderHeaders    = []string{"Reference", "Product", "Qty", "BOM", "Version", "Status", "Progress %", "Priority", "Deadline"}
)

func writeSheet(f *excelize.File, sheet string, headers []string, widths []float64, rows [][]any, headerStyle int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	for r, row := range rows {
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &row); err != nil {
			return err
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func stockRows(components []*domain.Component) [][]any {
	rows := make([][]any, 0, len(components))
	for _, c := range components {
		low := "no"
		if c.IsLowStock() {
			low = "yes"
		}
		rows = append(rows, []any{
			c.ID, c.Name, c.QuantityOnHand,
			c.UnitCost.InexactFloat64(), c.StockValue().InexactFloat64(),
			c.ReorderLevel, c.Supplier, low,
		})
	}
	return rows
}

func movementRows(movements []*domain.StockMovement) [][]any {
	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			m.CreatedAt.Format(time.RFC3339), m.ComponentName, string(m.Type),
			m.Quantity, m.BalanceAfter, m.Reference, m.CreatedBy,
		})
	}
	return rows
}

func orderRows(orders []*domain.ManufacturingOrder) [][]any {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{
			o.DisplayID(), o.ProductName, o.Quantity, o.BOMName, o.BOMVersion,
			string(o.Status), o.Progress, string(o.Priority), o.Deadline.Format("2006-01-02"),
		})
	}
	return rows
}
