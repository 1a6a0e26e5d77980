package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/monitoring"
	"github.com/glasspane/preview/internal/overlay"
	"github.com/glasspane/preview/internal/preview"
	"github.com/glasspane/preview/internal/vfs"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	table    *vfs.Table
	registry *preview.HandleRegistry
	engine   *preview.Engine
	overlay  *overlay.Sync
	selector *overlay.Selector
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	table *vfs.Table,
	registry *preview.HandleRegistry,
	engine *preview.Engine,
	sync *overlay.Sync,
	selector *overlay.Selector,
	metrics *monitoring.Metrics,
	log *logging.Logger,
) *Handlers {
	return &Handlers{
		table:    table,
		registry: registry,
		engine:   engine,
		overlay:  sync,
		selector: selector,
		metrics:  metrics,
		log:      log,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "preview-engine",
		"version": "0.2.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	status := gin.H{
		"status":       "healthy",
		"files":        h.table.Len(),
		"handles_live": h.registry.LiveCount(),
	}
	if gen := h.engine.Current(); gen != nil {
		status["generation"] = gen.Result.Generation.String()
		status["placeholder"] = gen.Result.Placeholder
	}
	c.JSON(http.StatusOK, status)
}
