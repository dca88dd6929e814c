package pipeline

import (
	"snapshop-be/internal/model"
)

// FilterPool applies the two-level category filter to a candidate's private
// pool: the subtype exclusion list when a subtype is resolved, otherwise the
// bucket's coarse list.
func FilterPool(pool []model.RetrievalHit, category model.Category, subtype *SubtypeRule) []model.RetrievalHit {
	out := make([]model.RetrievalHit, 0, len(pool))
	for _, hit := range pool {
		if hitExcluded(category, subtype, hit) {
			continue
		}
		out = append(out, hit)
	}
	return out
}

// FilterWholePool filters the shared whole-photo pool for one candidate.
// Whole-photo hits must positively match the bucket's vocabulary (the photo
// contains unrelated items) on top of passing the exclusion check.
func FilterWholePool(pool []model.RetrievalHit, category model.Category, subtype *SubtypeRule) []model.RetrievalHit {
	out := make([]model.RetrievalHit, 0, len(pool))
	for _, hit := range pool {
		if !MatchesVocabulary(category, hit) {
			continue
		}
		if hitExcluded(category, subtype, hit) {
			continue
		}
		out = append(out, hit)
	}
	return out
}

// BuildMergedPool assembles the pool sent to ranking: cropped-image hits
// first, whole-image hits appended, deduplicated, capped.
func BuildMergedPool(cropped, whole []model.RetrievalHit, limit int) []model.RetrievalHit {
	merged := make([]model.RetrievalHit, 0, len(cropped)+len(whole))
	merged = append(merged, cropped...)
	merged = append(merged, whole...)
	merged = DedupeHits(merged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
