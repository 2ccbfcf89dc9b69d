package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dropbot/types"
)

// RegisterProcessRoutes registers the enrichment endpoints.
func (s *Server) RegisterProcessRoutes(r *gin.Engine) {
	r.POST("/api/process", s.handleProcess)
	r.POST("/api/process-all", s.handleProcessAll)
}

// ProcessRequest is the incoming enrichment request.
type ProcessRequest struct {
	BookmarkIDs []string `json:"bookmark_ids" binding:"required"`

	ExtractTags        *bool `json:"extract_tags"`
	GenerateSummary    *bool `json:"generate_summary"`
	UpdateRemote       *bool `json:"update_remote"`
	OverrideClassified bool  `json:"override_classified"`
	MaxTags            int   `json:"max_tags_per_item"`
	MaxContentChars    int   `json:"max_content_chars"`
}

// options converts the request flags, defaulting the three main toggles
// to true the way the original request contract does.
func (r *ProcessRequest) options() types.EnrichmentOptions {
	boolOr := func(v *bool, def bool) bool {
		if v == nil {
			return def
		}
		return *v
	}
	return types.EnrichmentOptions{
		ExtractTags:        boolOr(r.ExtractTags, true),
		GenerateSummary:    boolOr(r.GenerateSummary, true),
		UpdateRemote:       boolOr(r.UpdateRemote, true),
		OverrideClassified: r.OverrideClassified,
		MaxTags:            r.MaxTags,
		MaxContentChars:    r.MaxContentChars,
	}
}

// handleProcess runs the pipeline over an explicit list of bookmark IDs.
func (s *Server) handleProcess(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.BookmarkIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookmark_ids must not be empty"})
		return
	}

	run, err := s.processor.Process(c.Request.Context(), req.BookmarkIDs, req.options())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

// ProcessAllRequest carries the flags for a whole-collection run.
type ProcessAllRequest struct {
	ExtractTags        *bool `json:"extract_tags"`
	GenerateSummary    *bool `json:"generate_summary"`
	UpdateRemote       *bool `json:"update_remote"`
	OverrideClassified bool  `json:"override_classified"`
	MaxTags            int   `json:"max_tags_per_item"`
	MaxContentChars    int   `json:"max_content_chars"`
}

// handleProcessAll enriches every unsorted, not-yet-classified bookmark.
func (s *Server) handleProcessAll(c *gin.Context) {
	var req ProcessAllRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inner := ProcessRequest{
		ExtractTags:        req.ExtractTags,
		GenerateSummary:    req.GenerateSummary,
		UpdateRemote:       req.UpdateRemote,
		OverrideClassified: req.OverrideClassified,
		MaxTags:            req.MaxTags,
		MaxContentChars:    req.MaxContentChars,
	}

	run, err := s.processor.ProcessAll(c.Request.Context(), inner.options())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}
