package api

import (
	"strconv"

	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/gin-gonic/gin"
)

// listWorkCenters lists active centers; ?all=true includes inactive ones.
func (h *handler) listWorkCenters(c *gin.Context) {
	all, _ := strconv.ParseBool(c.Query("all"))
	centers, err := h.svc.WorkCenters.List(c.Request.Context(), all)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toWorkCenterViews(centers))
}

func (h *handler) getWorkCenter(c *gin.Context) {
	wc, err := h.svc.WorkCenters.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toWorkCenterView(wc))
}

func (h *handler) createWorkCenter(c *gin.Context) {
	var req service.CreateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	wc, err := h.svc.WorkCenters.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, toWorkCenterView(wc))
}

func (h *handler) updateWorkCenter(c *gin.Context) {
	var req service.UpdateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	wc, err := h.svc.WorkCenters.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toWorkCenterView(wc))
}

// deactivateWorkCenter keeps the row so completed work stays priced.
func (h *handler) deactivateWorkCenter(c *gin.Context) {
	wc, err := h.svc.WorkCenters.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toWorkCenterView(wc))
}

func (h *handler) workCenterLoad(c *gin.Context) {
	load, err := h.svc.WorkCenters.Load(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toWorkCenterLoadViews(load))
}
