package pipeline

import (
	"context"
	"fmt"
	"time"

	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
)

// ProgressSink receives item results as they complete. Wired to the event
// bus in the service layer; nil disables progress reporting.
type ProgressSink interface {
	ItemCompleted(requestID string, item model.ItemResult)
	SearchCompleted(requestID string, result model.SearchResult)
}

// Aggregator runs the full per-candidate pipeline fan-out. Each candidate's
// working set is independent, so items run concurrently with no locks; the
// whole-photo pool is shared read-only.
type Aggregator struct {
	retriever *Retriever
	ranker    *Ranker
	validator *Validator
	fallback  *FallbackRunner
	overall   time.Duration
	sink      ProgressSink
	logger    logger.ILogger
}

func NewAggregator(
	retriever *Retriever,
	ranker *Ranker,
	validator *Validator,
	fallback *FallbackRunner,
	overallTimeout time.Duration,
	sink ProgressSink,
	log logger.ILogger,
) *Aggregator {
	return &Aggregator{
		retriever: retriever,
		ranker:    ranker,
		validator: validator,
		fallback:  fallback,
		overall:   overallTimeout,
		sink:      sink,
		logger:    log,
	}
}

// Run executes the pipeline for one request. Always returns a result: items
// that failed carry provenance error, items still in flight at the deadline
// carry provenance timeout, and completed items are never discarded.
func (a *Aggregator) Run(ctx context.Context, requestID, originalImageURL string, candidates []model.Candidate) model.SearchResult {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.overall)
	defer cancel()

	result := model.SearchResult{
		Items: make(map[string]model.ItemResult, len(candidates)),
	}

	if len(candidates) == 0 {
		// First-class outcome, not an error: route to the whole-photo path.
		item := a.fallback.Run(ctx, originalImageURL)
		result.Items[item.ItemKey] = item
		result.SourceCounts.Add(item.Provenance)
		result.TotalMs = time.Since(started).Milliseconds()
		a.publishItem(requestID, item)
		a.publishCompleted(requestID, result)
		return result
	}

	wholePool, err := a.retriever.WholePhotoPool(ctx, originalImageURL)
	if err != nil {
		// Candidates can still resolve from their crops alone.
		a.logger.Warn("search_pipeline", "whole-photo retrieval failed, continuing with crops only", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		wholePool = nil
	}

	outcomes := make(chan model.ItemResult, len(candidates))
	for _, cand := range candidates {
		go func(cand model.Candidate) {
			outcomes <- a.runItem(ctx, cand, wholePool)
		}(cand)
	}

	pending := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		pending[cand.ItemKey] = true
	}

	remaining := len(candidates)
collect:
	for remaining > 0 {
		select {
		case item := <-outcomes:
			delete(pending, item.ItemKey)
			result.Items[item.ItemKey] = item
			result.SourceCounts.Add(item.Provenance)
			remaining--
			a.publishItem(requestID, item)
		case <-ctx.Done():
			break collect
		}
	}

	// Deadline hit: in-flight items are reported as timeouts, finished ones
	// are kept as-is.
	for key := range pending {
		item := model.ItemResult{
			ItemKey:    key,
			Products:   []model.RankedProduct{},
			Provenance: model.ProvenanceTimeout,
		}
		result.Items[key] = item
		result.SourceCounts.Add(model.ProvenanceTimeout)
		a.publishItem(requestID, item)
	}

	result.TotalMs = time.Since(started).Milliseconds()
	a.logger.Info("search_pipeline", "request finished", map[string]interface{}{
		"request_id": requestID,
		"items":      len(result.Items),
		"counts":     result.SourceCounts,
		"total_ms":   result.TotalMs,
	})
	a.publishCompleted(requestID, result)
	return result
}

// runItem executes retrieval, filtering, ranking and validation for one
// candidate. Panics and upstream failures never escape this boundary; they
// degrade to provenance error.
func (a *Aggregator) runItem(ctx context.Context, cand model.Candidate, wholePool []model.RetrievalHit) (out model.ItemResult) {
	out = model.ItemResult{
		ItemKey:    cand.ItemKey,
		Products:   []model.RankedProduct{},
		Provenance: model.ProvenanceNone,
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("search_pipeline", "item pipeline panicked", map[string]interface{}{
				"item_key": cand.ItemKey,
				"panic":    fmt.Sprintf("%v", r),
			})
			out.Products = []model.RankedProduct{}
			out.Provenance = model.ProvenanceError
		}
	}()

	item := &ItemContext{
		Candidate: cand,
		Subtype:   ResolveSubtype(cand.MappedCategory, cand.Description),
		WholePool: wholePool,
	}

	retrievalStarted := time.Now()
	if cand.CroppedImageURL != "" {
		cropped, err := a.retriever.CroppedPool(ctx, cand.CroppedImageURL)
		if err != nil {
			a.logger.Warn("search_pipeline", "cropped retrieval failed", map[string]interface{}{
				"item_key": cand.ItemKey,
				"error":    err.Error(),
			})
		} else {
			item.CroppedPool = cropped
		}
	}
	item.Timing.RetrievalMs = time.Since(retrievalStarted).Milliseconds()

	filteredCropped := FilterPool(item.CroppedPool, cand.MappedCategory, item.Subtype)
	item.WholeMatch = FilterWholePool(item.WholePool, cand.MappedCategory, item.Subtype)
	item.Merged = BuildMergedPool(filteredCropped, item.WholeMatch, mergedPoolCap)

	rankStarted := time.Now()
	picks, err := a.ranker.Rank(ctx, item, a.validator)
	item.Timing.RankMs = time.Since(rankStarted).Milliseconds()
	out.Timing = item.Timing

	if err == nil {
		item.Selected = a.validator.FilterSelected(item, picks)
		kept := a.validator.ApplyQuota(cand.ItemKey, item.Selected)
		kept = a.validator.PrependWholePhotoHits(item, kept)
		if len(kept) > 0 {
			out.Products = AttachMetadata(item, kept)
			out.Provenance = model.ProvenanceLLM
			return out
		}
	} else {
		a.logger.Warn("search_pipeline", "ranking unavailable, trying raw fallback", map[string]interface{}{
			"item_key": cand.ItemKey,
			"error":    err.Error(),
		})
	}

	// Weaker strategy: best raw hits passing only the domain/URL checks.
	raw := a.validator.RawFallback(item)
	if len(raw) > 0 {
		out.Products = AttachMetadata(item, raw)
		out.Provenance = model.ProvenanceFallback
		return out
	}

	return out
}

func (a *Aggregator) publishItem(requestID string, item model.ItemResult) {
	if a.sink != nil {
		a.sink.ItemCompleted(requestID, item)
	}
}

func (a *Aggregator) publishCompleted(requestID string, result model.SearchResult) {
	if a.sink != nil {
		a.sink.SearchCompleted(requestID, result)
	}
}
