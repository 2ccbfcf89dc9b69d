package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"dropbot/types"
)

// Processor is the pipeline surface the API exposes.
type Processor interface {
	Process(ctx context.Context, ids []string, opts types.EnrichmentOptions) (*types.ProcessingRun, error)
	ProcessAll(ctx context.Context, opts types.EnrichmentOptions) (*types.ProcessingRun, error)
}

// HistoryLister reads recorded runs.
type HistoryLister interface {
	List(ctx context.Context, filter *types.HistoryFilter) ([]*types.ProcessingRun, error)
}

// BookmarkLister reads candidate bookmarks from the remote service.
type BookmarkLister interface {
	FetchUnsorted(ctx context.Context) ([]*types.Bookmark, error)
}

// FeedImporter creates bookmarks from a feed URL.
type FeedImporter interface {
	Import(ctx context.Context, feedURL string, maxItems int) ([]string, error)
}

// Server holds the injected collaborators behind the HTTP shim.
type Server struct {
	processor Processor
	history   HistoryLister
	bookmarks BookmarkLister
	importer  FeedImporter // optional
}

// NewServer creates the API server around the given collaborators.
// importer may be nil; the import endpoint then reports unavailable.
func NewServer(processor Processor, history HistoryLister, bookmarks BookmarkLister, importer FeedImporter) *Server {
	return &Server{
		processor: processor,
		history:   history,
		bookmarks: bookmarks,
		importer:  importer,
	}
}

// NewRouter constructs a Gin engine with registered routes.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	s.RegisterBookmarkRoutes(r)
	s.RegisterProcessRoutes(r)
	s.RegisterHistoryRoutes(r)
	RegisterHealthRoutes(r)
	return r
}
