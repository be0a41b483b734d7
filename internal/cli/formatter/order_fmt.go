package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
)

const orderProgressBarWidth = 10

func FormatOrderList(orders []*domain.ManufacturingOrder, now time.Time) string {
	if len(orders) == 0 {
		return Dim("No manufacturing orders.") + "\n"
	}
	headers := []string{"REF", "PRODUCT", "QTY", "BOM", "STATUS", "PROGRESS", "PRIORITY", "DEADLINE"}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.DisplayID(),
			o.ProductName,
			strconv.Itoa(o.Quantity),
			fmt.Sprintf("%s v%d", o.BOMName, o.BOMVersion),
			OrderStatusPill(o.Status),
			RenderProgress(o.Progress, orderProgressBarWidth),
			PriorityBadge(o.Priority),
			DeadlineStyled(o.Deadline, now, o.Status.IsTerminal()),
		})
	}
	return RenderTable(headers, rows, 2)
}

// FormatOrder renders an order header followed by its routing.
func FormatOrder(o *domain.ManufacturingOrder, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", Bold(o.DisplayID()), o.ProductName, OrderStatusPill(o.Status))
	fmt.Fprintf(&b, "  Quantity: %d\n", o.Quantity)
	fmt.Fprintf(&b, "  BOM:      %s v%d\n", o.BOMName, o.BOMVersion)
	fmt.Fprintf(&b, "  Priority: %s\n", PriorityBadge(o.Priority))
	fmt.Fprintf(&b, "  Deadline: %s\n", DeadlineStyled(o.Deadline, now, o.Status.IsTerminal()))
	fmt.Fprintf(&b, "  Progress: %s\n", RenderProgress(o.Progress, orderProgressBarWidth))
	if o.Notes != "" {
		fmt.Fprintf(&b, "  Notes:    %s\n", o.Notes)
	}
	if len(o.WorkOrders) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	headers := []string{"#", "ID", "OPERATION", "STATUS", "PLANNED", "ACTUAL", "OPERATOR", "CENTER", "COST"}
	rows := make([][]string, 0, len(o.WorkOrders))
	for _, w := range o.WorkOrders {
		actual := Dim("--")
		if w.ActualDurationMinutes != nil {
			actual = FormatMinutes(*w.ActualDurationMinutes)
		}
		operator := Dim("--")
		if w.AssignedTo != nil {
			operator = *w.AssignedTo
		}
		center := Dim("--")
		if w.WorkCenterName != "" {
			center = w.WorkCenterName
		}
		rows = append(rows, []string{
			strconv.Itoa(w.Sequence), TruncID(w.ID), w.Name, WorkOrderStatusPill(w.Status),
			FormatMinutes(w.DurationMinutes), actual, operator, center, workOrderCost(w),
		})
	}
	b.WriteString(RenderTable(headers, rows, 0, 8))
	return b.String()
}

// workOrderCost shows the actual cost once known, else the estimate
// prefixed with "~".
func workOrderCost(w *domain.WorkOrder) string {
	switch {
	case w.ActualCost != nil:
		return Money(*w.ActualCost)
	case w.EstimatedCost != nil:
		return Dim("~" + Money(*w.EstimatedCost))
	default:
		return Dim("--")
	}
}

// FormatTransition summarizes a work order transition and its effect on
// the parent order.
func FormatTransition(w *domain.WorkOrder, o *domain.ManufacturingOrder) string {
	return fmt.Sprintf("%s %s → %s\n%s %s %s\n",
		Bold(w.Name), TruncID(w.ID), WorkOrderStatusPill(w.Status),
		Bold(o.DisplayID()), OrderStatusPill(o.Status), RenderProgress(o.Progress, orderProgressBarWidth))
}
