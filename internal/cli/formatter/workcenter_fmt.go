package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/domain"
)

func FormatWorkCenters(centers []*domain.WorkCenter) string {
	if len(centers) == 0 {
		return Dim("No work centers.") + "\n"
	}
	headers := []string{"ID", "NAME", "RATE/H", "CAPACITY", "EFFICIENCY", "STATUS"}
	rows := make([][]string, 0, len(centers))
	for _, wc := range centers {
		rows = append(rows, []string{
			TruncID(wc.ID), wc.Name, Money(wc.CostPerHour), strconv.Itoa(wc.Capacity),
			wc.Efficiency.String(), activeLabel(wc.Active),
		})
	}
	return RenderTable(headers, rows, 2, 3, 4)
}

func FormatWorkCenter(wc *domain.WorkCenter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", Bold(wc.Name), TruncID(wc.ID), activeLabel(wc.Active))
	if wc.Description != "" {
		fmt.Fprintf(&b, "  %s\n", wc.Description)
	}
	fmt.Fprintf(&b, "  Rate:       %s/h\n", Money(wc.CostPerHour))
	fmt.Fprintf(&b, "  Capacity:   %d\n", wc.Capacity)
	fmt.Fprintf(&b, "  Efficiency: %s\n", wc.Efficiency.String())
	return b.String()
}

// FormatWorkCenterLoad renders planned against actual work per center.
func FormatWorkCenterLoad(load []*domain.WorkCenterLoad) string {
	if len(load) == 0 {
		return Dim("No active work centers.") + "\n"
	}
	headers := []string{"CENTER", "OPEN", "DONE", "PLANNED", "ACTUAL", "EST. COST", "ACTUAL COST"}
	rows := make([][]string, 0, len(load))
	for _, l := range load {
		rows = append(rows, []string{
			l.WorkCenterName, strconv.Itoa(l.OpenWorkOrders), strconv.Itoa(l.Completed),
			FormatMinutes(l.PlannedMinutes), FormatMinutes(l.ActualMinutes),
			Money(l.EstimatedCost), Money(l.ActualCost),
		})
	}
	return RenderTable(headers, rows, 1, 2, 3, 4, 5, 6)
}

func activeLabel(active bool) string {
	if active {
		return StyleGreen.Render("active")
	}
	return Dim("inactive")
}
