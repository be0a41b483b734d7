package api

import (
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *handler) listBOMs(c *gin.Context) {
	boms, err := h.svc.BOMs.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toBOMViews(boms))
}

func (h *handler) getBOM(c *gin.Context) {
	bom, err := h.svc.BOMs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toBOMView(bom))
}

func (h *handler) createBOM(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	bom, err := h.svc.BOMs.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, toBOMView(bom))
}

func (h *handler) reviseBOM(c *gin.Context) {
	var req service.ReviseBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	bom, err := h.svc.BOMs.Revise(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	created(c, toBOMView(bom))
}

// bomHistory lists every version sharing the name of the given BOM.
func (h *handler) bomHistory(c *gin.Context) {
	ctx := c.Request.Context()
	bom, err := h.svc.BOMs.Get(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	versions, err := h.svc.BOMs.History(ctx, bom.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	success(c, toBOMViews(versions))
}

func (h *handler) deleteBOM(c *gin.Context) {
	if err := h.svc.BOMs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	success(c, gin.H{"id": c.Param("id")})
}
