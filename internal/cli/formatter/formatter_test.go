package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/alexanderramin/shopfloor/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now, "Today"},
		{"tomorrow", now.Add(24 * time.Hour), "Tomorrow"},
		{"yesterday", now.Add(-24 * time.Hour), "Yesterday"},
		{"3 days future", now.Add(3 * 24 * time.Hour), "In 3d"},
		{"3 days past", now.Add(-3 * 24 * time.Hour), "3d ago"},
		{"3 weeks future", now.Add(21 * 24 * time.Hour), "In 3w"},
		{"3 months future", now.Add(90 * 24 * time.Hour), "In 3mo"},
		{"2 weeks past", now.Add(-14 * 24 * time.Hour), "2w ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, now))
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "1h 30m", FormatMinutes(90))
}

func TestRenderProgress_Clamps(t *testing.T) {
	assert.Equal(t, "[░░░░]   0%", stripANSI(RenderProgress(-5, 4)))
	assert.Equal(t, "[██░░]  50%", stripANSI(RenderProgress(50, 4)))
	assert.Equal(t, "[████] 100%", stripANSI(RenderProgress(140, 4)))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := stripANSI(RenderTable([]string{"NAME", "QTY"}, [][]string{{"Bolt", "5"}, {"Washer", "120"}}, 1))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "NAME    QTY", lines[0])
	assert.Equal(t, "Bolt      5", lines[2])
	assert.Equal(t, "Washer  120", lines[3])
}

func TestFormatComponents_FlagsLowStock(t *testing.T) {
	low := testutil.NewTestComponent("Bolt", testutil.WithQuantity(3), testutil.WithUnitCost("0.25"))
	ok := testutil.NewTestComponent("Nut", testutil.WithQuantity(50), testutil.WithSupplier("Acme"))

	out := stripANSI(FormatComponents([]*domain.Component{low, ok}))
	assert.Contains(t, out, "3 ▼")
	assert.Contains(t, out, "0.75")
	assert.Contains(t, out, "Acme")
	assert.NotContains(t, out, "50 ▼")

	assert.Contains(t, stripANSI(FormatComponents(nil)), "No components.")
}

func TestFormatOrder_ShowsRouting(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	o := testutil.NewTestOrder("bom-1", "Gearbox",
		testutil.WithOrderStatus(domain.OrderInProgress),
		testutil.WithDeadline(now.Add(72*time.Hour)))
	o.Reference = "MO-0012"
	o.BOMName = "Gearbox"
	o.BOMVersion = 3
	o.Progress = 50
	actual := 40
	done := testutil.NewTestWorkOrder(o.ID, 1, "Cut", testutil.WithWorkOrderStatus(domain.WorkOrderCompleted), testutil.WithAssignee("alice"))
	done.ActualDurationMinutes = &actual
	o.WorkOrders = []*domain.WorkOrder{
		done,
		testutil.NewTestWorkOrder(o.ID, 2, "Weld", testutil.WithDuration(90)),
	}

	out := stripANSI(FormatOrder(o, now))
	assert.Contains(t, out, "MO-0012")
	assert.Contains(t, out, "● InProgress")
	assert.Contains(t, out, "Gearbox v3")
	assert.Contains(t, out, "2026-03-04 (In 3d)")
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, "✔ Completed")
	assert.Contains(t, out, "40m")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "1h 30m")
}

func TestFormatShortages(t *testing.T) {
	out := stripANSI(FormatShortages("Completion blocked", []*domain.InsufficientStockError{
		{ComponentID: "c1", ComponentName: "Spring", Required: 8, Available: 3},
	}))
	assert.Contains(t, out, "Completion blocked")
	assert.Contains(t, out, "Spring")
	assert.Contains(t, out, "5")
	assert.Empty(t, FormatShortages("none", nil))
}

func TestFormatDashboard(t *testing.T) {
	out := stripANSI(FormatDashboard(&service.DashboardSummary{
		OrdersByStatus:     map[domain.OrderStatus]int{domain.OrderPlanned: 2, domain.OrderDone: 1},
		TotalOrders:        3,
		TotalComponents:    7,
		TotalBOMs:          2,
		LowStockComponents: 1,
		InventoryValue:     decimal.RequireFromString("1234.5"),
	}))
	assert.Contains(t, out, "SHOP FLOOR")
	assert.Contains(t, out, "Total orders: 3")
	assert.Contains(t, out, "Low stock:       1")
	assert.Contains(t, out, "1234.50")
}

func TestFormatOrder_RoutingShowsCenterAndCost(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	o := testutil.NewTestOrder("bom-1", "Frame", testutil.WithDeadline(now.Add(24*time.Hour)))
	estimated := decimal.RequireFromString("45")
	actual := decimal.RequireFromString("52.5")
	weld := testutil.NewTestWorkOrder(o.ID, 1, "Weld", testutil.WithWorkCenter("wc-1"))
	weld.WorkCenterName = "Welding"
	weld.EstimatedCost = &estimated
	paint := testutil.NewTestWorkOrder(o.ID, 2, "Paint", testutil.WithWorkOrderStatus(domain.WorkOrderCompleted))
	paint.ActualCost = &actual
	o.WorkOrders = []*domain.WorkOrder{weld, paint}

	out := stripANSI(FormatOrder(o, now))
	assert.Contains(t, out, "CENTER")
	assert.Contains(t, out, "Welding")
	assert.Contains(t, out, "~45.00")
	assert.Contains(t, out, "52.50")
}

func TestFormatWorkCenters(t *testing.T) {
	assert.Contains(t, stripANSI(FormatWorkCenters(nil)), "No work centers.")

	lathe := testutil.NewTestWorkCenter("Lathe", testutil.WithRate("42.5"), testutil.WithCapacity(3))
	old := testutil.NewTestWorkCenter("Old Press", testutil.Inactive())
	out := stripANSI(FormatWorkCenters([]*domain.WorkCenter{lathe, old}))
	assert.Contains(t, out, "Lathe")
	assert.Contains(t, out, "42.50")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "inactive")

	out = stripANSI(FormatWorkCenterLoad([]*domain.WorkCenterLoad{{
		WorkCenterName: "Lathe",
		OpenWorkOrders: 2,
		Completed:      1,
		PlannedMinutes: 90,
		ActualMinutes:  40,
		EstimatedCost:  decimal.RequireFromString("63.75"),
		ActualCost:     decimal.RequireFromString("28.33"),
	}}))
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "63.75")
	assert.Contains(t, out, "28.33")
}
