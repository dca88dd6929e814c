package events

import (
	"time"

	"snapshop-be/internal/model"
)

const (
	TypeSearchItemCompleted = "SEARCH_ITEM_COMPLETED"
	TypeSearchCompleted     = "SEARCH_COMPLETED"
)

// NewSearchItemCompleted is emitted once per candidate as its pipeline
// finishes, in completion order.
func NewSearchItemCompleted(requestID string, item model.ItemResult) Event {
	return BaseEvent{
		Type: TypeSearchItemCompleted,
		Data: map[string]interface{}{
			"request_id": requestID,
			"item_key":   item.ItemKey,
			"provenance": string(item.Provenance),
			"products":   item.Products,
			"timing":     item.Timing,
		},
		OccurredAt: time.Now(),
	}
}

// NewSearchCompleted is emitted once per request with the aggregate counts.
func NewSearchCompleted(requestID string, result model.SearchResult) Event {
	return BaseEvent{
		Type: TypeSearchCompleted,
		Data: map[string]interface{}{
			"request_id":    requestID,
			"item_count":    len(result.Items),
			"source_counts": result.SourceCounts,
			"total_ms":      result.TotalMs,
		},
		OccurredAt: time.Now(),
	}
}
