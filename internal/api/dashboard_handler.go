package api

import (
	"fmt"

	"github.com/alexanderramin/shopfloor/internal/report"
	"github.com/gin-gonic/gin"
)

// exportMovementLimit caps the ledger rows written to the workbook.
const exportMovementLimit = 1000

func (h *handler) dashboardSummary(c *gin.Context) {
	s, err := h.svc.Status.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	byStatus := make(map[string]int, len(s.OrdersByStatus))
	for status, n := range s.OrdersByStatus {
		byStatus[string(status)] = n
	}
	success(c, summaryView{
		OrdersByStatus:     byStatus,
		TotalOrders:        s.TotalOrders,
		TotalComponents:    s.TotalComponents,
		TotalBOMs:          s.TotalBOMs,
		LowStockComponents: s.LowStockComponents,
		InventoryValue:     s.InventoryValue,
		GeneratedAt:        s.GeneratedAt,
	})
}

func (h *handler) exportWorkbook(c *gin.Context) {
	data, err := report.Gather(c.Request.Context(), h.svc.Stock, h.svc.Orders, exportMovementLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := report.Build(data)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", report.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", data.FileName()))
	if err := f.Write(c.Writer); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "writing workbook", "error", err)
	}
}
