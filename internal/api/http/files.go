package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glasspane/preview/internal/shared/paths"
)

// maxUpload caps request bodies for file writes and archive imports.
const maxUpload = 64 << 20

// ListFiles lists project paths, optionally filtered by a glob pattern
func (h *Handlers) ListFiles(c *gin.Context) {
	if pattern := c.Query("glob"); pattern != "" {
		matches, err := h.table.Glob(pattern)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid pattern: " + err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"paths": matches})
		return
	}
	if prefix := c.Query("under"); prefix != "" {
		c.JSON(http.StatusOK, gin.H{"paths": h.table.Under(prefix)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": h.table.Paths()})
}

// ReadFile returns one entry's content
func (h *Handlers) ReadFile(c *gin.Context) {
	path := paths.Normalize(c.Param("path"))

	content, ok := h.table.Read(path)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "No such file: " + path,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":    path,
		"content": content,
	})
}

// WriteFile stores one entry
func (h *Handlers) WriteFile(c *gin.Context) {
	path := paths.Normalize(c.Param("path"))

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

	h.table.Write(path, req.Content)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path,
	})
}

// DeleteFile removes one entry
func (h *Handlers) DeleteFile(c *gin.Context) {
	path := paths.Normalize(c.Param("path"))
	h.table.Delete(path)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path,
	})
}

// MergeFiles applies a batch of entries in one mutation
func (h *Handlers) MergeFiles(c *gin.Context) {
	var req struct {
		Files map[string]string `json:"files" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	h.table.Merge(req.Files)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(req.Files),
	})
}

// ImportArchive imports a zip or tar.gz body into the table
func (h *Handlers) ImportArchive(c *gin.Context) {
	dest := c.DefaultQuery("dest", "/")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Read body: " + err.Error(),
		})
		return
	}

	var report interface{}
	switch c.DefaultQuery("format", "zip") {
	case "zip":
		report, err = h.table.ImportZip(bytes.NewReader(body), int64(len(body)), dest)
	case "tar.gz", "tgz":
		report, err = h.table.ImportTarGz(bytes.NewReader(body), dest)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Unknown format. Must be zip or tar.gz",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}
