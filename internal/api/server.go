// Package api exposes the shop floor services over HTTP with gin.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/shopfloor/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderOperator names the acting operator for a request.
	HeaderOperator  = "X-Operator"
	HeaderRequestID = "X-Request-ID"

	shutdownTimeout = 10 * time.Second
)

// Services are the use cases the HTTP surface dispatches to.
type Services struct {
	Stock       service.StockService
	BOMs        service.BOMService
	Orders      service.OrderService
	WorkOrders  service.WorkOrderService
	WorkCenters service.WorkCenterService
	Status      service.StatusService
}

type handler struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the gin engine with all /api routes.
func NewRouter(svc Services, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discard{}, nil))
	}
	h := &handler{svc: svc, logger: logger}

	r := gin.New()
	r.Use(requestContext())
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")

	components := api.Group("/components")
	components.GET("", h.listComponents)
	components.POST("", h.createComponent)
	components.GET("/:id", h.getComponent)
	components.PUT("/:id", h.updateComponent)
	components.DELETE("/:id", h.deleteComponent)
	components.PUT("/:id/unit-cost", h.updateUnitCost)

	stock := api.Group("/stock")
	stock.GET("", h.listComponents)
	stock.GET("/low", h.lowStock)
	stock.GET("/movements", h.listMovements)
	stock.POST("/movements", h.createMovement)

	boms := api.Group("/boms")
	boms.GET("", h.listBOMs)
	boms.POST("", h.createBOM)
	boms.GET("/:id", h.getBOM)
	boms.DELETE("/:id", h.deleteBOM)
	boms.POST("/:id/revisions", h.reviseBOM)
	boms.GET("/:id/history", h.bomHistory)

	orders := api.Group("/manufacturing-orders")
	orders.GET("", h.listOrders)
	orders.POST("", h.createOrder)
	orders.GET("/:id", h.getOrder)
	orders.PUT("/:id", h.updateOrder)
	orders.DELETE("/:id", h.deleteOrder)
	orders.POST("/:id/cancel", h.cancelOrder)
	orders.POST("/:id/complete", h.completeOrder)

	wos := api.Group("/work-orders")
	wos.GET("/by-order/:order_id", h.listWorkOrders)
	wos.GET("/:id", h.getWorkOrder)
	wos.POST("/:id/start", h.startWorkOrder)
	wos.POST("/:id/pause", h.pauseWorkOrder)
	wos.POST("/:id/complete", h.completeWorkOrder)
	wos.POST("/:id/assign", h.assignWorkOrder)

	centers := api.Group("/work-centers")
	centers.GET("", h.listWorkCenters)
	centers.POST("", h.createWorkCenter)
	centers.GET("/load", h.workCenterLoad)
	centers.GET("/:id", h.getWorkCenter)
	centers.PUT("/:id", h.updateWorkCenter)
	centers.DELETE("/:id", h.deactivateWorkCenter)

	api.GET("/dashboard/summary", h.dashboardSummary)
	api.GET("/exports/stock.xlsx", h.exportWorkbook)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"kind": "not_found", "message": "route not found"}})
	})
	return r
}

// requestContext tags the request with an ID and carries the operator
// header into the service context.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Header(HeaderRequestID, rid)

		ctx := service.WithActor(c.Request.Context(), c.GetHeader(HeaderOperator))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		}
		if op := service.ActorFrom(c.Request.Context()); op != "" {
			attrs = append(attrs, "operator", op)
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request", attrs...)
	}
}

// Serve runs the HTTP server until ctx ends, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
