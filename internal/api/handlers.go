package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/scan"
	"github.com/MosinFAM/halal-guide/internal/storage"
)

// Options carries the settings handlers and routes depend on.
type Options struct {
	APIAccessKey   string
	MapAPIKey      string
	AllowedOrigins []string
	// Production hides error details from clients.
	Production     bool
	CacheEnabled   bool
	ArchiveEnabled bool
	Version        string
}

type Handler struct {
	source   *storage.Source
	scanner  *scan.Scanner
	opts     Options
	upgrader websocket.Upgrader
	now      func() time.Time
}

func NewHandler(source *storage.Source, scanner *scan.Scanner, opts Options) *Handler {
	h := &Handler{
		source:  source,
		scanner: scanner,
		opts:    opts,
		now:     time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || allowsAnyOrigin(h.opts.AllowedOrigins) {
		return true
	}
	for _, o := range h.opts.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// liveStore returns the live store or answers 503 when the process runs in
// demo mode.
func (h *Handler) liveStore(c *gin.Context, feature string) (storage.Storage, bool) {
	store, err := h.source.Live()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": fmt.Sprintf("Database not available. %s are not supported in demo mode.", feature),
		})
		return nil, false
	}
	return store, true
}

// respondError maps err to a status code. failure is the message of
// unexpected errors.
func (h *Handler) respondError(c *gin.Context, err error, failure string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.Is(err, storage.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not available in demo mode"})
	case errors.Is(err, scan.ErrNotConfigured):
		slog.Error("ANTHROPIC_API_KEY is not set")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API configuration error"})
	case errors.Is(err, scan.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be base64 encoded"})
	default:
		slog.Error(failure, "path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
		body := gin.H{"error": failure}
		if errors.Is(err, scan.ErrProvider) && !h.opts.Production {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, models.Invalid("id", "invalid post id %q", c.Param("id"))
	}
	return id, nil
}

// intQuery reads an optional positive integer parameter.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, models.Invalid(name, "%s must be a positive integer", name)
	}
	return n, nil
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
		"scan": gin.H{
			"configured": h.scanner.Configured(),
			"cache":      h.opts.CacheEnabled,
			"archive":    h.opts.ArchiveEnabled,
		},
	}

	store, err := h.source.Live()
	switch {
	case err != nil:
		health["database"] = "not_configured"
		health["mode"] = "demo"
	default:
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			slog.Warn("Database ping failed", "error", err)
			health["database"] = "unavailable"
			health["mode"] = "fallback"
		} else {
			health["database"] = "connected"
			health["mode"] = "live"
		}
	}

	c.JSON(http.StatusOK, health)
}

// GetClientConfig hands the browser map widget its provider key.
func (h *Handler) GetClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mapApiKey":       h.opts.MapAPIKey,
		"languages":       models.SupportedLanguages,
		"defaultLanguage": models.DefaultLanguage,
	})
}

func (h *Handler) GetRoot(c *gin.Context) {
	endpoints := map[string]string{
		"places":   "/api/halal-places",
		"posts":    "/api/posts",
		"comments": "/api/posts/<id>/comments",
		"stream":   "/api/posts/<id>/comments/stream (websocket)",
		"scan":     "/api/scan (POST)",
		"health":   "/health",
	}
	if h.opts.APIAccessKey != "" {
		endpoints["scans"] = "/api/admin/scans (requires X-API-Key header)"
	}

	c.JSON(http.StatusOK, gin.H{
		"service":     "Halal Guide",
		"version":     h.opts.Version,
		"description": "Halal venue map, community board and product label scanner",
		"endpoints":   endpoints,
	})
}
