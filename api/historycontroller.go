package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dropbot/types"
)

// RegisterHistoryRoutes registers the processing history endpoints.
func (s *Server) RegisterHistoryRoutes(r *gin.Engine) {
	r.GET("/api/history", s.handleHistory)
}

// HistoryResponse wraps a history listing.
type HistoryResponse struct {
	Runs       []*types.ProcessingRun `json:"runs"`
	TotalCount int                    `json:"total_count"`
}

// handleHistory lists recorded runs, newest first.
// Query params: limit (int), since (RFC 3339 timestamp).
func (s *Server) handleHistory(c *gin.Context) {
	filter := &types.HistoryFilter{}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC 3339 timestamp"})
			return
		}
		filter.Since = since
	}

	runs, err := s.history.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Runs:       runs,
		TotalCount: len(runs),
	})
}
