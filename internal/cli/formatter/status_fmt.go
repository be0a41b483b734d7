package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/service"
)

// FormatDashboard renders the shop floor summary in a box.
func FormatDashboard(s *service.DashboardSummary) string {
	var b strings.Builder
	for _, st := range domain.ValidOrderStatuses {
		fmt.Fprintf(&b, "%-16s %d\n", OrderStatusPill(st), s.OrdersByStatus[st])
	}
	fmt.Fprintf(&b, "%s %d\n\n", Dim("Total orders:"), s.TotalOrders)

	fmt.Fprintf(&b, "Components:      %d\n", s.TotalComponents)
	low := fmt.Sprintf("%d", s.LowStockComponents)
	if s.LowStockComponents > 0 {
		low = StyleRed.Render(low)
	}
	fmt.Fprintf(&b, "Low stock:       %s\n", low)
	fmt.Fprintf(&b, "BOMs:            %d\n", s.TotalBOMs)
	fmt.Fprintf(&b, "Inventory value: %s", Bold(Money(s.InventoryValue)))
	return RenderBox("Shop floor", b.String()) + "\n"
}
