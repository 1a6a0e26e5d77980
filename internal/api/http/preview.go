package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glasspane/preview/internal/shared/id"
	"github.com/glasspane/preview/internal/shared/mime"
)

// GetPreview returns the current render generation
func (h *Handlers) GetPreview(c *gin.Context) {
	gen := h.engine.Current()
	if gen == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "No generation installed yet",
		})
		return
	}

	res := gen.Result
	c.JSON(http.StatusOK, gin.H{
		"generation":  res.Generation.String(),
		"root":        h.engine.Root(),
		"path":        res.DocumentPath,
		"title":       res.Title,
		"placeholder": res.Placeholder,
		"rewrites":    res.Rewrites,
		"diagnostics": res.Diagnostics,
		"document":    res.Document,
	})
}

// GetPreviewDocument serves the current generation as HTML
func (h *Handlers) GetPreviewDocument(c *gin.Context) {
	gen := h.engine.Current()
	if gen == nil {
		c.String(http.StatusServiceUnavailable, "no generation installed yet")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(gen.Result.Document))
}

// SetPreviewRoot changes the preview root and triggers a rebuild
func (h *Handlers) SetPreviewRoot(c *gin.Context) {
	var req struct {
		Root string `json:"root" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	h.engine.SetRoot(req.Root)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"root":    h.engine.Root(),
	})
}

// GetAsset dereferences an ephemeral resource handle. Revoked or unknown
// handles are indistinguishable: both are 404.
func (h *Handlers) GetAsset(c *gin.Context) {
	handle, ok := h.registry.Lookup(id.HandleID(c.Param("id")))
	if !ok {
		c.String(http.StatusNotFound, "unknown or revoked handle")
		return
	}

	if match := c.GetHeader("If-None-Match"); match != "" && match == handle.ETag {
		c.Status(http.StatusNotModified)
		return
	}

	contentType := handle.ContentType
	if contentType == mime.Binary {
		contentType = mime.Detect(handle.Bytes())
	}

	c.Header("ETag", handle.ETag)
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentType, handle.Bytes())
}
