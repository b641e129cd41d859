package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MosinFAM/halal-guide/internal/scan"
)

const (
	maxScanBody     = 20 << 20
	defaultScanPage = 50
	maxScanPage     = 200
)

// Scan POST /api/scan
func (h *Handler) Scan(c *gin.Context) {
	// credentials are checked before the body is read
	if !h.scanner.Configured() {
		h.respondError(c, scan.ErrNotConfigured, "")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxScanBody)
	var req scan.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.scanner.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to analyze image")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListScans GET /api/admin/scans
func (h *Handler) ListScans(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultScanPage)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	store, ok := h.liveStore(c, "Scan histories")
	if !ok {
		return
	}

	scans, err := store.ListScans(c.Request.Context(), min(limit, maxScanPage))
	if err != nil {
		h.respondError(c, err, "Failed to fetch scan history")
		return
	}

	c.JSON(http.StatusOK, scans)
}
