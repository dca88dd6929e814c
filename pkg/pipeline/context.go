package pipeline

import (
	"snapshop-be/internal/model"
)

// ItemContext carries one candidate's working set through the stages. The
// whole-photo pool is shared read-only across items; everything else is
// private to the item, so stages never need locks.
type ItemContext struct {
	Candidate model.Candidate
	Subtype   *SubtypeRule

	WholePool   []model.RetrievalHit // shared, read-only
	CroppedPool []model.RetrievalHit // raw private pool
	WholeMatch  []model.RetrievalHit // whole pool after positive+exclusion filter
	Merged      []model.RetrievalHit // filtered, capped pool sent to ranking

	Selected []string // links the LLM picked, pool-membership enforced

	Timing model.ItemTiming
}

// LookupHit resolves link metadata: whole-photo pool first, then the merged
// pool, then the raw private pool. First match wins.
func (c *ItemContext) LookupHit(link string) (model.RetrievalHit, bool) {
	for _, pool := range [][]model.RetrievalHit{c.WholePool, c.Merged, c.CroppedPool} {
		for _, hit := range pool {
			if hit.Link == link {
				return hit, true
			}
		}
	}
	return model.RetrievalHit{}, false
}

// PoolContains reports membership of a link in the merged pool. Used to
// discard LLM picks that were never submitted.
func (c *ItemContext) PoolContains(link string) bool {
	for _, hit := range c.Merged {
		if hit.Link == link {
			return true
		}
	}
	return false
}
