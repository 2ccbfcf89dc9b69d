package types

import (
	"context"
	"errors"
)

// Sentinel errors for the item-scoped failure kinds. All of them are
// non-fatal to a batch: they are recorded on the ItemResult and never
// surfaced to the caller as a hard error.
var (
	ErrContentUnavailable       = errors.New("content unavailable")
	ErrExtractionUnavailable    = errors.New("extraction unavailable")
	ErrSummarizationUnavailable = errors.New("summarization unavailable")
	ErrRemoteWriteFailed        = errors.New("remote write failed")
	ErrTimeout                  = errors.New("timeout")
)

// FailureKind maps an item-scoped error to its wire name.
// Timeouts are folded into ErrTimeout regardless of the failing stage.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return "Timeout"
	case errors.Is(err, ErrContentUnavailable):
		return "ContentUnavailable"
	case errors.Is(err, ErrExtractionUnavailable):
		return "ExtractionUnavailable"
	case errors.Is(err, ErrSummarizationUnavailable):
		return "SummarizationUnavailable"
	case errors.Is(err, ErrRemoteWriteFailed):
		return "RemoteWriteFailed"
	default:
		return "Error"
	}
}
