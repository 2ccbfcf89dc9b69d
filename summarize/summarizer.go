package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"dropbot/config"
	"dropbot/types"
)

const summaryPrompt = "Summarize the following document in a short paragraph. " +
	"State the core message first, then the key points. Reply with the summary only.\n\n"

// Summarizer wraps the Gemini API as a text-to-summary engine with a
// bounded output length.
type Summarizer struct {
	client   *genai.Client
	model    string
	maxChars int
}

// New creates a summarizer for the given API key and model.
func New(ctx context.Context, apiKey, model string) (*Summarizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("summarizer API key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("summarizer model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create summarization client: %w", err)
	}

	return &Summarizer{
		client:   client,
		model:    strings.TrimSpace(model),
		maxChars: config.MaxSummaryChars,
	}, nil
}

// Summarize generates a bounded-length summary of the text.
// Input below the minimum length is a no-op: it returns ("", nil), since
// summarizing near-empty text is not a meaningful failure. Engine errors,
// quota exhaustion, and timeouts fail with ErrSummarizationUnavailable.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < config.MinSummarizeChars {
		return "", nil
	}

	resp, err := s.client.Models.GenerateContent(
		ctx,
		s.model,
		genai.Text(summaryPrompt+text),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrSummarizationUnavailable, err)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", fmt.Errorf("%w: engine returned no text", types.ErrSummarizationUnavailable)
	}

	return BoundLength(summary, s.maxChars), nil
}

// BoundLength truncates a summary to maxChars characters. The summary is
// truncated, never silently dropped.
func BoundLength(summary string, maxChars int) string {
	if maxChars <= 0 {
		return summary
	}
	runes := []rune(summary)
	if len(runes) <= maxChars {
		return summary
	}
	return string(runes[:maxChars])
}
