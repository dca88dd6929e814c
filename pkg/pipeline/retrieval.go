package pipeline

import (
	"context"
	"fmt"
	"time"

	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
	"snapshop-be/pkg/lens"

	gocache "github.com/patrickmn/go-cache"
)

// retrievalAttempts is how many times one image is submitted in parallel.
// The lens backend is noisy; pooling repeated calls stabilizes the hit set.
const retrievalAttempts = 3

// Retriever produces deduplicated hit pools for whole photos and crops.
// Whole-photo pools are cached by image URL so repeated requests on the same
// photo skip the engine entirely.
type Retriever struct {
	engine lens.Engine
	cache  *gocache.Cache
	logger logger.ILogger
}

func NewRetriever(engine lens.Engine, cacheTTL time.Duration, log logger.ILogger) *Retriever {
	return &Retriever{
		engine: engine,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: log,
	}
}

// WholePhotoPool returns the shared pool for the original photo. Computed
// once per image URL and treated as read-only by all candidates.
func (r *Retriever) WholePhotoPool(ctx context.Context, imageURL string) ([]model.RetrievalHit, error) {
	if cached, ok := r.cache.Get(imageURL); ok {
		pool := cached.([]model.RetrievalHit)
		r.logger.Debug("retrieval", "whole-photo pool cache hit", map[string]interface{}{
			"image_url": imageURL,
			"hits":      len(pool),
		})
		return pool, nil
	}

	pool, err := r.poolForImage(ctx, imageURL, model.HitSourceFull)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(imageURL, pool)
	return pool, nil
}

// CroppedPool returns a candidate's private pool for its crop URL.
func (r *Retriever) CroppedPool(ctx context.Context, imageURL string) ([]model.RetrievalHit, error) {
	return r.poolForImage(ctx, imageURL, model.HitSourceCropped)
}

// poolForImage submits the image retrievalAttempts times in parallel and
// pools the organic results. Fails only if every attempt fails.
func (r *Retriever) poolForImage(ctx context.Context, imageURL string, source model.HitSource) ([]model.RetrievalHit, error) {
	type attemptResult struct {
		index int
		hits  []model.RetrievalHit
		err   error
	}

	results := make(chan attemptResult, retrievalAttempts)
	for i := 0; i < retrievalAttempts; i++ {
		go func(index int) {
			hits, err := r.engine.SearchByImage(ctx, imageURL)
			results <- attemptResult{index: index, hits: hits, err: err}
		}(i)
	}

	// Collect in attempt order so merging stays deterministic for identical
	// upstream responses.
	ordered := make([][]model.RetrievalHit, retrievalAttempts)
	var lastErr error
	failures := 0
	for i := 0; i < retrievalAttempts; i++ {
		res := <-results
		if res.err != nil {
			failures++
			lastErr = res.err
			r.logger.Warn("retrieval", "search attempt failed", map[string]interface{}{
				"image_url": imageURL,
				"attempt":   res.index,
				"error":     res.err.Error(),
			})
			continue
		}
		ordered[res.index] = res.hits
	}

	if failures == retrievalAttempts {
		return nil, fmt.Errorf("all %d retrieval attempts failed: %w", retrievalAttempts, lastErr)
	}

	var merged []model.RetrievalHit
	for _, hits := range ordered {
		merged = append(merged, hits...)
	}
	pool := DedupeHits(merged)
	for i := range pool {
		pool[i].Source = source
	}

	r.logger.Info("retrieval", "pool assembled", map[string]interface{}{
		"image_url": imageURL,
		"source":    string(source),
		"raw_hits":  len(merged),
		"pooled":    len(pool),
	})
	return pool, nil
}

// DedupeHits keeps each link exactly once. First-seen position is kept;
// content is last-write-wins (duplicate hits are near-identical anyway).
func DedupeHits(hits []model.RetrievalHit) []model.RetrievalHit {
	position := make(map[string]int, len(hits))
	out := make([]model.RetrievalHit, 0, len(hits))
	for _, hit := range hits {
		if idx, seen := position[hit.Link]; seen {
			out[idx] = hit
			continue
		}
		position[hit.Link] = len(out)
		out = append(out, hit)
	}
	return out
}
