package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dropbot/types"
)

// RegisterBookmarkRoutes registers bookmark listing and import endpoints.
func (s *Server) RegisterBookmarkRoutes(r *gin.Engine) {
	g := r.Group("/api/bookmarks")
	g.GET("", s.handleListBookmarks)
	g.POST("/import", s.handleImportFeed)
}

// BookmarkListResponse wraps a bookmark listing.
type BookmarkListResponse struct {
	Bookmarks  []*types.Bookmark `json:"bookmarks"`
	TotalCount int               `json:"total_count"`
}

// handleListBookmarks returns the unsorted bookmarks from the remote
// service. Already classified items are filtered out unless
// include_processed=true.
func (s *Server) handleListBookmarks(c *gin.Context) {
	includeProcessed, _ := strconv.ParseBool(c.DefaultQuery("include_processed", "false"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	bookmarks, err := s.bookmarks.FetchUnsorted(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch bookmarks: " + err.Error()})
		return
	}

	if !includeProcessed {
		filtered := bookmarks[:0]
		for _, b := range bookmarks {
			if !b.IsClassified() {
				filtered = append(filtered, b)
			}
		}
		bookmarks = filtered
	}

	c.JSON(http.StatusOK, BookmarkListResponse{
		Bookmarks:  bookmarks,
		TotalCount: len(bookmarks),
	})
}

// ImportFeedRequest asks for feed items to be saved as bookmarks.
type ImportFeedRequest struct {
	FeedURL  string `json:"feed_url" binding:"required"`
	MaxItems int    `json:"max_items"`
}

// handleImportFeed pulls an RSS/Atom feed and creates link bookmarks in
// the remote service.
func (s *Server) handleImportFeed(c *gin.Context) {
	if s.importer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feed import not configured"})
		return
	}

	var req ImportFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.importer.Import(c.Request.Context(), req.FeedURL, req.MaxItems)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "import failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported_ids": created,
		"count":        len(created),
	})
}
