package handler

import (
	"net/http"
	"strings"

	"bhoomisetu/search/internal/service"

	"github.com/gin-gonic/gin"
)

// LocationHandler exposes the geocoder directly
type LocationHandler struct {
	geocoder service.LocationNormalizer
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(geocoder service.LocationNormalizer) *LocationHandler {
	return &LocationHandler{geocoder: geocoder}
}

// Geocode handles GET /api/v1/locations/geocode?q=
func (h *LocationHandler) Geocode(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Query is required"})
		return
	}

	location := h.geocoder.Normalize(c.Request.Context(), query)
	if location == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No results found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"location":   location,
		"confidence": location.Confidence,
		"source":     location.Source,
	})
}
