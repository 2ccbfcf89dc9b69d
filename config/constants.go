package config

import "time"

// Pipeline Constants
const (
	// DefaultWorkers limits the number of bookmarks enriched simultaneously
	DefaultWorkers = 5

	// StageTimeout bounds each remote call (resolve, extract, summarize, write)
	StageTimeout = 30 * time.Second

	// DefaultMaxTags is the number of new tags requested per item
	DefaultMaxTags = 5

	// DefaultMaxContentChars caps the text handed to the extraction and
	// summarization engines. Content beyond the cap is truncated, never rejected.
	DefaultMaxContentChars = 8000
)

// Summary Constants
const (
	// MaxSummaryChars bounds generated summaries; longer output is truncated
	MaxSummaryChars = 1500

	// MinSummarizeChars is the minimum input length worth summarizing.
	// Shorter input is skipped rather than treated as a failure.
	MinSummarizeChars = 10
)

// Content Cache Constants
const (
	// PageCacheTTL is how long fetched page text stays in the Redis cache
	PageCacheTTL = 24 * time.Hour

	// PageCachePrefix namespaces cached page text keys
	PageCachePrefix = "dropbot:page:"
)
