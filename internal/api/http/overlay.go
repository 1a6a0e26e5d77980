package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glasspane/preview/internal/overlay"
	"github.com/glasspane/preview/internal/shared/id"
)

// docPath returns the entry document the overlay mutates: the current
// generation's document path under the active root.
func (h *Handlers) docPath() string {
	if gen := h.engine.Current(); gen != nil {
		return gen.Result.DocumentPath
	}
	return "/index.html"
}

func overlayStatus(err error) int {
	switch {
	case errors.Is(err, overlay.ErrNoDocument):
		return http.StatusNotFound
	case errors.Is(err, overlay.ErrMalformedFragment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// InsertFragment tags and splices a fragment into the root document
func (h *Handlers) InsertFragment(c *gin.Context) {
	var req struct {
		Fragment string `json:"fragment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	region, err := h.overlay.Insert(h.docPath(), req.Fragment)
	h.metrics.RecordOverlayOp("insert", err)
	if err != nil {
		c.JSON(overlayStatus(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"region_id": region.String(),
	})
}

// CommitEdit stores a region's edited inner content
func (h *Handlers) CommitEdit(c *gin.Context) {
	region := id.RegionID(c.Param("id"))

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	err := h.overlay.CommitEdit(h.docPath(), region, req.Content)
	h.metrics.RecordOverlayOp("commit", err)
	if err != nil {
		c.JSON(overlayStatus(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"region_id": region.String(),
	})
}

// FormatRegion applies a formatting action to a region
func (h *Handlers) FormatRegion(c *gin.Context) {
	region := id.RegionID(c.Param("id"))

	var req struct {
		Action string `json:"action" binding:"required"`
		Align  string `json:"align"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	var err error
	switch req.Action {
	case "bold":
		err = h.overlay.ToggleBold(h.docPath(), region)
	case "italic":
		err = h.overlay.ToggleItalic(h.docPath(), region)
	case "align":
		err = h.overlay.Align(h.docPath(), region, overlay.Alignment(req.Align))
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown action. Must be bold, italic, or align",
		})
		return
	}
	h.metrics.RecordOverlayOp(req.Action, err)
	if err != nil {
		status := overlayStatus(err)
		if req.Action == "align" && !errors.Is(err, overlay.ErrNoDocument) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"region_id": region.String(),
		"action":    req.Action,
	})
}

// SetSelection records the selected region and its on-screen rect
func (h *Handlers) SetSelection(c *gin.Context) {
	var req struct {
		RegionID string       `json:"regionId" binding:"required"`
		Rect     overlay.Rect `json:"rect"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	h.selector.Select(id.RegionID(req.RegionID), req.Rect)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearSelection drops the selection
func (h *Handlers) ClearSelection(c *gin.Context) {
	h.selector.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSelection returns the current selection, if any
func (h *Handlers) GetSelection(c *gin.Context) {
	sel := h.selector.Current()
	if sel == nil {
		c.JSON(http.StatusOK, gin.H{"selected": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"selected":  true,
		"selection": sel,
	})
}
