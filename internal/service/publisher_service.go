package service

import (
	"context"
	"encoding/json"
	"time"

	"snapshop-be/internal/dto"
	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
	"snapshop-be/pkg/events"
	pkgNats "snapshop-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService pushes pipeline progress onto the in-process bus. It is
// the ProgressSink the aggregator writes to; delivery to websocket clients
// happens on the consumer side.
type IPublisherService interface {
	ItemCompleted(requestID string, item model.ItemResult)
	SearchCompleted(requestID string, result model.SearchResult)
}

type publisherService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *pkgNats.Publisher
	logger    logger.ILogger
}

func NewPublisherService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *pkgNats.Publisher,
	log logger.ILogger,
) IPublisherService {
	return &publisherService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		logger:    log,
	}
}

func (ps *publisherService) ItemCompleted(requestID string, item model.ItemResult) {
	ps.publishFrame(dto.StreamMessageDTO{
		Type:      events.TypeSearchItemCompleted,
		RequestID: requestID,
		Data:      item,
	})
}

func (ps *publisherService) SearchCompleted(requestID string, result model.SearchResult) {
	ps.publishFrame(dto.StreamMessageDTO{
		Type:      events.TypeSearchCompleted,
		RequestID: requestID,
		Data: map[string]interface{}{
			"item_count":    len(result.Items),
			"source_counts": result.SourceCounts,
			"total_ms":      result.TotalMs,
		},
	})

	// Mirror the terminal event to NATS for the analytics consumers.
	// Progress frames stay in-process; only the summary leaves the box.
	if ps.natsPub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ps.natsPub.Publish(ctx, events.NewSearchCompleted(requestID, result)); err != nil {
			ps.logger.Warn("publisher_service", "failed to mirror completion event to NATS", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
		}
	}
}

func (ps *publisherService) publishFrame(frame dto.StreamMessageDTO) {
	payload, err := json.Marshal(frame)
	if err != nil {
		ps.logger.Error("publisher_service", "failed to marshal progress frame", map[string]interface{}{
			"request_id": frame.RequestID,
			"type":       frame.Type,
			"error":      err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		ps.logger.Error("publisher_service", "failed to publish progress frame", map[string]interface{}{
			"request_id": frame.RequestID,
			"type":       frame.Type,
			"error":      err.Error(),
		})
	}
}
