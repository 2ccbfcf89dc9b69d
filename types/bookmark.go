package types

import "time"

// BookmarkType mirrors the remote service's item types.
type BookmarkType string

const (
	TypeLink    BookmarkType = "link"
	TypeArticle BookmarkType = "article"
	TypeVideo   BookmarkType = "video"
)

// ClassifiedTag marks a bookmark as already processed by the pipeline.
// It is written together with the merged tag set in the same update call.
const ClassifiedTag = "_classified"

// Bookmark represents a single saved item held by the remote bookmark service.
// The pipeline holds a read-mostly copy of it for the duration of one run.
type Bookmark struct {
	ID         string       `json:"id"`
	Link       string       `json:"link"`
	Title      string       `json:"title"`
	Type       BookmarkType `json:"type"`
	Excerpt    string       `json:"excerpt,omitempty"`
	Note       string       `json:"note,omitempty"`
	Tags       []string     `json:"tags"`
	Summary    string       `json:"summary,omitempty"`
	Created    time.Time    `json:"created"`
	LastUpdate time.Time    `json:"last_update,omitempty"`
}

// IsClassified reports whether the bookmark already carries the marker tag.
func (b *Bookmark) IsClassified() bool {
	for _, t := range b.Tags {
		if t == ClassifiedTag {
			return true
		}
	}
	return false
}

// EnrichmentOptions holds the per-request flags controlling one pipeline run.
// The options are immutable for the duration of the run.
type EnrichmentOptions struct {
	ExtractTags        bool `json:"extract_tags"`
	GenerateSummary    bool `json:"generate_summary"`
	UpdateRemote       bool `json:"update_remote"`
	OverrideClassified bool `json:"override_classified"`

	// MaxTags caps the number of new tags per item. Zero means the default.
	MaxTags int `json:"max_tags_per_item,omitempty"`
	// MaxContentChars caps the text handed to the adapters. Zero means the default.
	MaxContentChars int `json:"max_content_chars,omitempty"`
}
