package api

import (
	"strconv"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *handler) listComponents(c *gin.Context) {
	components, err := h.svc.Stock.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toComponentViews(components))
}

func (h *handler) lowStock(c *gin.Context) {
	components, err := h.svc.Stock.LowStock(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toComponentViews(components))
}

func (h *handler) getComponent(c *gin.Context) {
	component, err := h.svc.Stock.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toComponentView(component))
}

func (h *handler) createComponent(c *gin.Context) {
	var req service.CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	component, err := h.svc.Stock.CreateComponent(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, toComponentView(component))
}

func (h *handler) updateComponent(c *gin.Context) {
	var req service.UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	component, err := h.svc.Stock.UpdateComponent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toComponentView(component))
}

func (h *handler) deleteComponent(c *gin.Context) {
	if err := h.svc.Stock.DeleteComponent(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	success(c, gin.H{"id": c.Param("id")})
}

type unitCostRequest struct {
	UnitCost decimal.Decimal `json:"unit_cost"`
}

func (h *handler) updateUnitCost(c *gin.Context) {
	var req unitCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	component, err := h.svc.Stock.AdjustUnitCost(c.Request.Context(), c.Param("id"), req.UnitCost)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toComponentView(component))
}

// movementRequest books a manual ledger entry. For ADJUSTMENT the quantity
// is the physically counted stock, not a delta.
type movementRequest struct {
	ComponentID  string `json:"component_id"`
	MovementType string `json:"movement_type"`
	Quantity     int    `json:"quantity"`
	Reference    string `json:"reference"`
}

func (h *handler) createMovement(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	typ, err := domain.ParseMovementType(req.MovementType)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	var balance int
	switch typ {
	case domain.MovementIn:
		balance, err = h.svc.Stock.Credit(ctx, req.ComponentID, req.Quantity, req.Reference)
	case domain.MovementOut:
		balance, err = h.svc.Stock.Debit(ctx, req.ComponentID, req.Quantity, req.Reference)
	case domain.MovementAdjustment:
		balance, err = h.svc.Stock.Adjust(ctx, req.ComponentID, req.Quantity, req.Reference)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, gin.H{"component_id": req.ComponentID, "movement_type": string(typ), "balance": balance})
}

func (h *handler) listMovements(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	movements, err := h.svc.Stock.Movements(c.Request.Context(), c.Query("component_id"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toMovementViews(movements))
}
