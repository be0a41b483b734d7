package api

import (
	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *handler) listOrders(c *gin.Context) {
	filter := repository.OrderFilter{BOMID: c.Query("bom_id")}
	if v := c.Query("status"); v != "" {
		status, err := domain.ParseOrderStatus(v)
		if err != nil {
			h.fail(c, err)
			return
		}
		filter.Status = status
	}
	orders, err := h.svc.Orders.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toOrderViews(orders))
}

func (h *handler) getOrder(c *gin.Context) {
	order, err := h.svc.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toOrderView(order))
}

type createOrderResponse struct {
	orderView
	StockWarnings []shortageView `json:"stock_warnings"`
}

func (h *handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.Orders.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, createOrderResponse{
		orderView:     toOrderView(res.Order),
		StockWarnings: toShortageViews(res.StockWarnings),
	})
}

func (h *handler) updateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.svc.Orders.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toOrderView(order))
}

func (h *handler) deleteOrder(c *gin.Context) {
	if err := h.svc.Orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	success(c, gin.H{"id": c.Param("id")})
}

func (h *handler) cancelOrder(c *gin.Context) {
	order, err := h.svc.Orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toOrderView(order))
}

func (h *handler) completeOrder(c *gin.Context) {
	order, err := h.svc.Orders.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toOrderView(order))
}
