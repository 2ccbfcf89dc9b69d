package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"dropbot/config"
	"dropbot/tags"
	"dropbot/types"
)

// BookmarkService is the remote store holding the bookmarks.
type BookmarkService interface {
	FetchUnsorted(ctx context.Context) ([]*types.Bookmark, error)
	Get(ctx context.Context, id string) (*types.Bookmark, error)
	Update(ctx context.Context, id string, tags []string, note string) error
}

// ContentResolver produces the plain text to analyze for a bookmark.
type ContentResolver interface {
	Resolve(ctx context.Context, b *types.Bookmark, maxChars int) (string, error)
}

// TagExtractor converts text into normalized, slug-safe tag strings.
type TagExtractor interface {
	Extract(ctx context.Context, text string, maxTags int) ([]string, error)
}

// Summarizer converts text into a bounded-length summary. An empty
// summary with a nil error means the input was not worth summarizing.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// HistoryStore records completed runs.
type HistoryStore interface {
	NewRunID() string
	Append(ctx context.Context, run *types.ProcessingRun) error
}

// RunObserver is notified after a run has been recorded. Used for
// optional side channels like the S3 archive; failures are logged, never
// propagated.
type RunObserver interface {
	RunCompleted(ctx context.Context, run *types.ProcessingRun)
}

// Options tunes the orchestrator. Zero values fall back to defaults.
type Options struct {
	// Workers bounds the per-run fan-out.
	Workers int
	// EngineRPS is a global rate limit across engine calls. <=0 disables it.
	EngineRPS float64
	// StageTimeout bounds each remote call within an item.
	StageTimeout time.Duration
}

// Orchestrator is the enrichment pipeline core. It selects eligible
// bookmarks, resolves their content, fans out to the extraction and
// summarization adapters, merges results, performs the remote update,
// and appends the run to the history store.
//
// Items within a run are independent: one item's failure never aborts
// or rolls back the others, and partial success is the expected case.
type Orchestrator struct {
	bookmarks  BookmarkService
	resolver   ContentResolver
	extractor  TagExtractor
	summarizer Summarizer
	history    HistoryStore
	observers  []RunObserver

	workers      int
	limiter      *rate.Limiter
	stageTimeout time.Duration
}

// New constructs an orchestrator around explicitly injected adapters.
// Summarizer may be nil when summarization is not configured; requests
// asking for summaries then degrade per the summary failure rules.
func New(bookmarks BookmarkService, resolver ContentResolver, extractor TagExtractor,
	summarizer Summarizer, history HistoryStore, opts Options) *Orchestrator {

	workers := opts.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers
	}
	stageTimeout := opts.StageTimeout
	if stageTimeout <= 0 {
		stageTimeout = config.StageTimeout
	}
	var limiter *rate.Limiter
	if opts.EngineRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.EngineRPS), 1)
	}

	return &Orchestrator{
		bookmarks:    bookmarks,
		resolver:     resolver,
		extractor:    extractor,
		summarizer:   summarizer,
		history:      history,
		workers:      workers,
		limiter:      limiter,
		stageTimeout: stageTimeout,
	}
}

// AddObserver registers a completed-run observer.
func (o *Orchestrator) AddObserver(obs RunObserver) {
	o.observers = append(o.observers, obs)
}

// Process runs the pipeline over the requested bookmark identifiers.
// The returned run holds exactly one result per requested identifier, in
// request order regardless of completion order.
func (o *Orchestrator) Process(ctx context.Context, ids []string, opts types.EnrichmentOptions) (*types.ProcessingRun, error) {
	return o.run(ctx, ids, make([]*types.Bookmark, len(ids)), opts)
}

// ProcessAll enriches every unsorted bookmark that is not yet classified
// (or every unsorted bookmark, with OverrideClassified). An inability to
// list bookmarks at all is run-fatal.
func (o *Orchestrator) ProcessAll(ctx context.Context, opts types.EnrichmentOptions) (*types.ProcessingRun, error) {
	listCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	bookmarks, err := o.bookmarks.FetchUnsorted(listCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	ids := make([]string, 0, len(bookmarks))
	prefetched := make([]*types.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.IsClassified() && !opts.OverrideClassified {
			continue
		}
		ids = append(ids, b.ID)
		prefetched = append(prefetched, b)
	}

	return o.run(ctx, ids, prefetched, opts)
}

func (o *Orchestrator) run(ctx context.Context, ids []string, prefetched []*types.Bookmark, opts types.EnrichmentOptions) (*types.ProcessingRun, error) {
	start := time.Now()
	runID := o.history.NewRunID()
	log.Printf("Run %s: processing %d bookmark(s)", runID, len(ids))

	results := make([]types.ItemResult, len(ids))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, o.workers)
	for i, id := range ids {
		wg.Add(1)
		go func(idx int, id string, b *types.Bookmark) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			results[idx] = o.processItem(ctx, id, b, opts)
		}(i, id, prefetched[i])
	}
	wg.Wait()

	failedIDs := make([]string, 0)
	succeeded := 0
	for _, res := range results {
		switch res.Status {
		case types.StatusFailed:
			failedIDs = append(failedIDs, res.ID)
		case types.StatusSucceeded:
			succeeded++
		}
	}

	run := &types.ProcessingRun{
		RunID:        runID,
		StartedAt:    start.UTC(),
		RequestedIDs: append([]string(nil), ids...),
		Items:        results,
		FailedIDs:    failedIDs,
		ElapsedMs:    time.Since(start).Milliseconds(),
	}

	// The append must survive caller disconnects: every slot in results
	// is filled by now, so either a complete record goes in, or none.
	appendCtx, cancel := context.WithTimeout(context.Background(), o.stageTimeout)
	defer cancel()
	if err := o.history.Append(appendCtx, run); err != nil {
		return nil, fmt.Errorf("failed to record run %s: %w", runID, err)
	}

	for _, obs := range o.observers {
		obs.RunCompleted(appendCtx, run)
	}

	log.Printf("✅ Run %s complete: %d succeeded, %d failed, %d skipped (%.2fs)",
		runID, succeeded, len(failedIDs), len(ids)-succeeded-len(failedIDs),
		time.Since(start).Seconds())
	return run, nil
}

// processItem walks one bookmark through the per-item state machine:
// eligibility, resolve, extract, summarize, merge, write-back.
func (o *Orchestrator) processItem(ctx context.Context, id string, b *types.Bookmark, opts types.EnrichmentOptions) types.ItemResult {
	if b == nil {
		getCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
		fetched, err := o.bookmarks.Get(getCtx, id)
		if err != nil {
			return failedResult(id, fmt.Errorf("%w: %v", types.ErrContentUnavailable, err))
		}
		b = fetched
	}

	if b.IsClassified() && !opts.OverrideClassified {
		log.Printf("Skipping already classified bookmark: %s", b.Title)
		return types.ItemResult{ID: id, Status: types.StatusSkipped}
	}

	resolveCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	text, err := o.resolver.Resolve(resolveCtx, b, opts.MaxContentChars)
	cancel()
	if err != nil {
		log.Printf("❌ No content for %s: %v", b.Title, err)
		return failedResult(id, err)
	}

	newTags, summary, err := o.enrich(ctx, text, opts)
	if err != nil {
		log.Printf("❌ Enrichment failed for %s: %v", b.Title, err)
		return failedResult(id, err)
	}

	if opts.UpdateRemote {
		merged := tags.Merge(b.Tags, newTags)
		merged = tags.Merge(merged, []string{types.ClassifiedTag})

		note := ""
		if summary != "" {
			note = summary
			if strings.TrimSpace(b.Note) != "" {
				note = summary + "\n\n" + b.Note
			}
		}

		writeCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
		err := o.bookmarks.Update(writeCtx, id, merged, note)
		cancel()
		if err != nil {
			log.Printf("❌ Remote write failed for %s: %v", b.Title, err)
			return failedResult(id, err)
		}
	}

	log.Printf("✓ Enriched %s: %d new tag(s)", b.Title, len(newTags))
	return types.ItemResult{
		ID:      id,
		Status:  types.StatusSucceeded,
		NewTags: newTags,
		Summary: summary,
	}
}

// enrich fans out to the extraction and summarization adapters. The two
// engines have no ordering dependency, so they run concurrently.
//
// Tags are essential: extraction failure fails the item. Summary failure
// after successful tag work degrades to tags-only instead.
func (o *Orchestrator) enrich(ctx context.Context, text string, opts types.EnrichmentOptions) ([]string, string, error) {
	var (
		wg      sync.WaitGroup
		newTags []string
		tagErr  error
		summary string
		sumErr  error
	)

	if opts.ExtractTags {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newTags, tagErr = o.callExtract(ctx, text, opts.MaxTags)
		}()
	}

	if opts.GenerateSummary {
		if o.summarizer == nil {
			sumErr = fmt.Errorf("%w: no summarizer configured", types.ErrSummarizationUnavailable)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				summary, sumErr = o.callSummarize(ctx, text)
			}()
		}
	}
	wg.Wait()

	if tagErr != nil {
		return nil, "", tagErr
	}
	if sumErr != nil {
		if opts.ExtractTags && len(newTags) > 0 {
			// Tags made it; a lost summary is not worth discarding them.
			log.Printf("Summary failed, keeping tags: %v", sumErr)
			return newTags, "", nil
		}
		return nil, "", sumErr
	}

	return newTags, summary, nil
}

func (o *Orchestrator) callExtract(ctx context.Context, text string, maxTags int) ([]string, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrExtractionUnavailable, err)
		}
	}
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	return o.extractor.Extract(stageCtx, text, maxTags)
}

func (o *Orchestrator) callSummarize(ctx context.Context, text string) (string, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrSummarizationUnavailable, err)
		}
	}
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()
	return o.summarizer.Summarize(stageCtx, text)
}

func failedResult(id string, err error) types.ItemResult {
	return types.ItemResult{
		ID:          id,
		Status:      types.StatusFailed,
		FailureKind: types.FailureKind(err),
		Reason:      err.Error(),
	}
}
