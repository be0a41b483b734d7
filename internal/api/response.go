package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Kind      string         `json:"kind"`
	Message   string         `json:"message"`
	Field     string         `json:"field,omitempty"`
	Shortages []shortageView `json:"shortages,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorBody{Kind: "validation", Message: message}})
}

// fail maps a service error onto a status code and error body.
func (h *handler) fail(c *gin.Context, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path, "error", err)
		body.Message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func classify(err error) (int, errorBody) {
	body := errorBody{Kind: service.ErrorKind(err), Message: err.Error()}

	var blocked *domain.CompletionBlockedError
	var short *domain.InsufficientStockError
	var invalid *domain.ValidationError
	if errors.As(err, &blocked) {
		body.Shortages = toShortageViews(blocked.Shortages)
	} else if errors.As(err, &short) {
		body.Shortages = toShortageViews([]*domain.InsufficientStockError{short})
	}
	if errors.As(err, &invalid) {
		body.Field = invalid.Field
	}

	switch body.Kind {
	case "completion_blocked", "insufficient_stock":
		return http.StatusUnprocessableEntity, body
	case "validation":
		return http.StatusBadRequest, body
	case "not_found":
		return http.StatusNotFound, body
	case "invalid_transition", "duplicate_name", "conflict":
		return http.StatusConflict, body
	}
	return http.StatusInternalServerError, body
}
