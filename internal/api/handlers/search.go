package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

const searchTimeout = 10 * time.Second

type SearchHandler struct {
	searchService *services.SearchService
	logger        *logrus.Logger
}

func NewSearchHandler(searchService *services.SearchService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// HandleSearch processes GET /questions/search?q=&order_by=&page=
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	startTime := time.Now()
	query := c.Query("q")
	page, _ := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	response, err := h.searchService.Search(ctx, principal(c), query, c.Query("order_by"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"query":         query,
		"order_by":      response.OrderBy,
		"results_count": len(response.Results),
		"response_time": time.Since(startTime).Milliseconds(),
		"ip_address":    c.ClientIP(),
	}).Debug("Search completed")

	utils.SuccessResponse(c, http.StatusOK, "", response)
}

// HandlePostSearch processes GET /posts/search?q=&order_by=&page=
func (h *SearchHandler) HandlePostSearch(c *gin.Context) {
	startTime := time.Now()
	query := c.Query("q")
	page, _ := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	response, err := h.searchService.SearchPosts(ctx, principal(c), query, c.Query("order_by"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"query":         query,
		"order_by":      response.OrderBy,
		"results_count": len(response.Results),
		"response_time": time.Since(startTime).Milliseconds(),
	}).Debug("Post search completed")

	utils.SuccessResponse(c, http.StatusOK, "", response)
}

// HandleSuggestions processes GET /questions/search/suggestions?q=&limit=
func (h *SearchHandler) HandleSuggestions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	suggestions, err := h.searchService.Suggest(ctx, c.Query("q"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", suggestions)
}
