package service

import (
	"context"
	"encoding/json"

	"snapshop-be/internal/dto"
	"snapshop-be/internal/pkg/logger"
	"snapshop-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the progress topic and fans frames out to the
// websocket clients following each request.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var frame dto.StreamMessageDTO
	if err := json.Unmarshal(msg.Payload, &frame); err != nil {
		cs.logger.Error("consumer_service", "failed to unmarshal progress frame", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid frames never become valid, drop them
		return
	}

	if frame.RequestID == "" {
		cs.logger.Warn("consumer_service", "progress frame without request id, dropping", map[string]interface{}{
			"type": frame.Type,
		})
		msg.Ack()
		return
	}

	cs.hub.Broadcast(frame.RequestID, msg.Payload)
	msg.Ack()
}
