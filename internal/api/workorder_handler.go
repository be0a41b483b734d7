package api

import (
	"errors"
	"io"

	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *handler) listWorkOrders(c *gin.Context) {
	wos, err := h.svc.WorkOrders.ListByOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toWorkOrderViews(wos))
}

func (h *handler) getWorkOrder(c *gin.Context) {
	wo, err := h.svc.WorkOrders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toWorkOrderView(wo))
}

func (h *handler) startWorkOrder(c *gin.Context) {
	h.respondTransition(c)(h.svc.WorkOrders.Start(c.Request.Context(), c.Param("id")))
}

func (h *handler) pauseWorkOrder(c *gin.Context) {
	h.respondTransition(c)(h.svc.WorkOrders.Pause(c.Request.Context(), c.Param("id")))
}

// completeWorkOrder accepts an empty body.
func (h *handler) completeWorkOrder(c *gin.Context) {
	var req service.CompleteWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	h.respondTransition(c)(h.svc.WorkOrders.Complete(c.Request.Context(), c.Param("id"), req))
}

type assignRequest struct {
	Operator string `json:"operator"`
}

func (h *handler) assignWorkOrder(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.respondTransition(c)(h.svc.WorkOrders.Assign(c.Request.Context(), c.Param("id"), req.Operator))
}

func (h *handler) respondTransition(c *gin.Context) func(*service.TransitionResult, error) {
	return func(res *service.TransitionResult, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		success(c, toTransitionView(res))
	}
}
