package importer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"
)

// DefaultMaxItems caps an import when the request does not set a limit.
const DefaultMaxItems = 10

// BookmarkCreator saves new bookmarks into the remote service.
type BookmarkCreator interface {
	Create(ctx context.Context, link, title, excerpt string) (string, error)
}

// Importer pulls an RSS/Atom feed and saves its entries as link
// bookmarks, ready for a later enrichment run.
type Importer struct {
	creator BookmarkCreator
	parser  *gofeed.Parser
	filter  *LinkFilter // optional duplicate guard, nil when unconfigured
}

// New creates a feed importer writing through the given creator.
// filter may be nil; duplicate detection is then disabled.
func New(creator BookmarkCreator, filter *LinkFilter) *Importer {
	return &Importer{
		creator: creator,
		parser:  gofeed.NewParser(),
		filter:  filter,
	}
}

// Import fetches and parses the feed, creating up to maxItems bookmarks.
// Individual create failures are logged and skipped; the returned slice
// holds the identifiers of the bookmarks actually created.
func (im *Importer) Import(ctx context.Context, feedURL string, maxItems int) ([]string, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	feed, err := im.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := min(len(feed.Items), maxItems)
	created := make([]string, 0, count)

	for i := 0; i < count; i++ {
		item := feed.Items[i]
		if item.Link == "" {
			continue
		}

		if im.filter != nil {
			seen, err := im.filter.Seen(ctx, item.Link)
			if err != nil {
				log.Printf("Duplicate check failed for %s, importing anyway: %v", item.Link, err)
			} else if seen {
				log.Printf("Skipping already imported link: %s", item.Link)
				continue
			}
		}

		excerpt := strings.TrimSpace(item.Description)
		if excerpt == "" {
			excerpt = strings.TrimSpace(item.Content)
		}

		id, err := im.creator.Create(ctx, item.Link, item.Title, excerpt)
		if err != nil {
			log.Printf("Failed to import %s: %v", item.Link, err)
			continue
		}
		log.Printf("✓ Imported: %s", item.Title)
		created = append(created, id)

		if im.filter != nil {
			if err := im.filter.Add(ctx, item.Link); err != nil {
				log.Printf("Failed to record imported link %s: %v", item.Link, err)
			}
		}
	}

	return created, nil
}
