package tags

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"dropbot/config"
	"dropbot/types"
)

const extractionPreamble = "You extract keywords. Given a document, reply with the most " +
	"relevant keywords or key phrases only, ordered from most to least relevant, " +
	"comma-separated, without numbering or commentary. Each keyword is one or two words."

// Extractor wraps the Cohere chat API as a text-to-keywords engine.
// Given identical text and model state the output ordering is stable:
// the engine ranks by relevance and runs at temperature zero.
type Extractor struct {
	client     *cohereclient.Client
	model      string
	normalizer *Normalizer
}

// NewExtractor creates a keyword extractor backed by Cohere.
// The client forces HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewExtractor(apiKey, model string, normalizer *Normalizer) *Extractor {
	httpClient := &http.Client{
		Timeout: config.StageTimeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Extractor{client: client, model: model, normalizer: normalizer}
}

// Extract returns up to maxTags normalized, slug-safe tags for the text,
// ordered by the engine's relevance ranking. An unreachable engine or an
// empty candidate set for non-empty input fails with ErrExtractionUnavailable.
func (e *Extractor) Extract(ctx context.Context, text string, maxTags int) ([]string, error) {
	if maxTags <= 0 {
		maxTags = config.DefaultMaxTags
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", types.ErrExtractionUnavailable)
	}

	temperature := 0.0
	preamble := extractionPreamble
	model := e.model

	resp, err := e.client.Chat(ctx, &cohere.ChatRequest{
		Message:     text,
		Model:       &model,
		Preamble:    &preamble,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExtractionUnavailable, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", types.ErrExtractionUnavailable)
	}

	keywords := ParseKeywordList(resp.Text)
	tags := e.normalizer.Normalize(keywords)
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned", types.ErrExtractionUnavailable)
	}

	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags, nil
}

// ParseKeywordList splits an engine reply into individual keyword strings.
// Replies are expected comma-separated but newline-separated lists occur too.
func ParseKeywordList(reply string) []string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil
	}

	sep := ","
	if !strings.Contains(reply, ",") && strings.Contains(reply, "\n") {
		sep = "\n"
	}

	parts := strings.Split(reply, sep)
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "-•*"))
		if p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
