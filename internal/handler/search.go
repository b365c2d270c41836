package handler

import (
	"net/http"

	"bhoomisetu/search/internal/model"
	"bhoomisetu/search/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.RankBy != "" && !req.RankBy.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rankBy value: " + string(req.RankBy)})
		return
	}

	response, err := h.searchService.Search(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Suggestions handles GET /api/v1/search/suggestions. Suggestion generation
// from search history is not implemented; the endpoint returns an empty list.
func (h *SearchHandler) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
}
