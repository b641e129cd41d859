package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MosinFAM/halal-guide/internal/geo"
	"github.com/MosinFAM/halal-guide/internal/models"
	"github.com/MosinFAM/halal-guide/internal/storage"
)

// ListPlaces GET /api/halal-places
func (h *Handler) ListPlaces(c *gin.Context) {
	ctx := c.Request.Context()

	category, err := models.ParsePlaceCategory(c.Query("category"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	level, err := models.ParseHalalLevel(c.Query("halalLevel"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	near, err := geo.ParseQuery(c.Query("lat"), c.Query("lng"), c.Query("radius"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	filter := models.PlaceFilter{Category: category, HalalLevel: level, Query: c.Query("q")}
	places, err := storage.Read(ctx, h.source, "list_places", func(s storage.Storage) ([]models.HalalPlace, error) {
		return s.ListPlaces(ctx, filter)
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch halal places")
		return
	}

	c.JSON(http.StatusOK, geo.Apply(places, near))
}
