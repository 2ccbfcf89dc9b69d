package content

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/youtube/v3"

	"dropbot/config"
	"dropbot/types"
)

// Resolver produces the plain text to analyze for a bookmark.
// Link items are fetched and run through readability; article and video
// items use the service-provided excerpt, note, or transcript material.
type Resolver struct {
	httpClient *http.Client
	cache      *redis.Client    // optional page cache, nil when unconfigured
	youtube    *youtube.Service // optional video description fallback
	cacheTTL   time.Duration
}

// NewResolver creates a content resolver. Both cache and yt may be nil;
// the resolver degrades to direct fetches without them.
func NewResolver(httpClient *http.Client, cache *redis.Client, yt *youtube.Service) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.StageTimeout}
	}
	return &Resolver{
		httpClient: httpClient,
		cache:      cache,
		youtube:    yt,
		cacheTTL:   config.PageCacheTTL,
	}
}

// Resolve returns the text for a bookmark, truncated to maxChars.
// A bookmark that yields no text at all fails with ErrContentUnavailable.
func (r *Resolver) Resolve(ctx context.Context, b *types.Bookmark, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = config.DefaultMaxContentChars
	}

	var text string
	switch b.Type {
	case types.TypeVideo:
		text = r.resolveVideo(ctx, b)
	case types.TypeArticle:
		text = strings.TrimSpace(b.Excerpt)
		if text == "" && b.Link != "" {
			text = r.fetchPageText(ctx, b.Link)
		}
	default:
		text = r.fetchPageText(ctx, b.Link)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text for bookmark %s", types.ErrContentUnavailable, b.ID)
	}

	return Truncate(text, maxChars), nil
}

// resolveVideo prefers stored material over network calls: a prior note
// (often a transcript or summary), then the excerpt, then the video
// description from the YouTube Data API when configured.
func (r *Resolver) resolveVideo(ctx context.Context, b *types.Bookmark) string {
	if note := strings.TrimSpace(b.Note); note != "" {
		return note
	}
	if excerpt := strings.TrimSpace(b.Excerpt); excerpt != "" {
		return excerpt
	}
	if r.youtube == nil {
		return ""
	}

	videoID := ExtractVideoID(b.Link)
	if videoID == "" {
		return ""
	}

	resp, err := r.youtube.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		log.Printf("YouTube lookup failed for %s: %v", b.Link, err)
		return ""
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return ""
	}
	return resp.Items[0].Snippet.Description
}

// fetchPageText downloads a page and extracts its readable text,
// consulting the cache first when one is configured. Boilerplate
// stripping is best-effort; on readability failure the raw body is used.
func (r *Resolver) fetchPageText(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, config.PageCachePrefix+link).Result(); err == nil {
			return cached
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("Failed to fetch %s: %v", link, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Fetch of %s returned %d", link, resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return ""
	}

	pageURL, _ := url.Parse(link)
	article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
	text := ""
	if err != nil {
		text = string(body)
	} else {
		text = article.TextContent
	}

	if r.cache != nil && strings.TrimSpace(text) != "" {
		if err := r.cache.Set(ctx, config.PageCachePrefix+link, text, r.cacheTTL).Err(); err != nil {
			log.Printf("Failed to cache page text for %s: %v", link, err)
		}
	}

	return text
}

// Truncate hard-caps text at maxChars characters. Truncation is never an error.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([\w-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([\w-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/(?:embed|shorts)/)([\w-]{11})`),
}

// ExtractVideoID pulls the 11-character YouTube video ID out of a URL.
// Returns "" when the URL is not a recognizable YouTube link.
func ExtractVideoID(link string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1]
		}
	}
	return ""
}
