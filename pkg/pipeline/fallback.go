package pipeline

import (
	"context"
	"time"

	"snapshop-be/internal/constant"
	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
)

// FallbackRunner handles the zero-candidate path: one whole-photo retrieval
// and one LLM call that both infers the category and picks links. The
// domestic quota is relaxed here; domain and URL rules still apply.
type FallbackRunner struct {
	retriever *Retriever
	ranker    *Ranker
	validator *Validator
	logger    logger.ILogger
}

func NewFallbackRunner(retriever *Retriever, ranker *Ranker, validator *Validator, log logger.ILogger) *FallbackRunner {
	return &FallbackRunner{
		retriever: retriever,
		ranker:    ranker,
		validator: validator,
		logger:    log,
	}
}

// Run produces a single item entry keyed by the inferred category (or
// "general_item"). Returns provenance none when nothing survives; the caller
// never sees an error-shaped response from an empty photo.
func (f *FallbackRunner) Run(ctx context.Context, originalImageURL string) model.ItemResult {
	started := time.Now()
	result := model.ItemResult{
		ItemKey:    constant.GeneralItemKey,
		Products:   []model.RankedProduct{},
		Provenance: model.ProvenanceNone,
	}

	pool, err := f.retriever.WholePhotoPool(ctx, originalImageURL)
	if err != nil {
		f.logger.Error("fallback", "whole-photo retrieval failed", map[string]interface{}{
			"image_url": originalImageURL,
			"error":     err.Error(),
		})
		result.Provenance = model.ProvenanceError
		return result
	}
	result.Timing.RetrievalMs = time.Since(started).Milliseconds()

	if len(pool) > mergedPoolCap {
		pool = pool[:mergedPoolCap]
	}

	rankStarted := time.Now()
	category, picks, err := f.ranker.RankFallback(ctx, pool, f.validator)
	result.Timing.RankMs = time.Since(rankStarted).Milliseconds()
	if err != nil {
		f.logger.Warn("fallback", "categorization call yielded nothing", map[string]interface{}{
			"image_url": originalImageURL,
			"error":     err.Error(),
		})
		return result
	}

	if category != "" {
		result.ItemKey = category
	}

	// Same domain/URL rules as the main path; no domestic quota here.
	kept := make([]string, 0, len(picks))
	for _, link := range picks {
		if !f.validator.linkPasses(link) {
			continue
		}
		kept = append(kept, link)
	}
	if len(kept) > finalResultCap {
		kept = kept[:finalResultCap]
	}
	if len(kept) == 0 {
		return result
	}

	item := &ItemContext{WholePool: pool, Merged: pool}
	result.Products = AttachMetadata(item, kept)
	result.Provenance = model.ProvenanceFallback
	return result
}
