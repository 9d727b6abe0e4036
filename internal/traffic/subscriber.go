package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Subscriber listens on the Redis advisory channel and hands each valid
// advisory to the multicaster.
type Subscriber struct {
	logger      *slog.Logger
	client      *redis.Client
	topic       string
	multicaster *Multicaster
}

func NewSubscriber(logger *slog.Logger, client *redis.Client, topic string, multicaster *Multicaster) *Subscriber {
	return &Subscriber{
		logger:      logger,
		client:      client,
		topic:       topic,
		multicaster: multicaster,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("advisory subscriber is running", "topic", s.topic)
	pubsub := s.client.Subscribe(ctx, s.topic)
	defer func() {
		if err := pubsub.Close(); err != nil {
			s.logger.Warn("failed to close pubsub", "error", err)
		}
	}()

	msgCh := pubsub.Channel()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				s.logger.Warn("pubsub channel closed by Redis")
				return nil
			}
			if err := s.handleMessage(msg); err != nil {
				s.logger.Error("error handling advisory", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("shutting down advisory subscriber")
			return nil
		}
	}
}

func (s *Subscriber) handleMessage(msg *redis.Message) error {
	var envelope Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
		return fmt.Errorf("unmarshalling advisory: %w", err)
	}
	if !envelope.Action.IsValid() {
		return fmt.Errorf("unknown action %q", envelope.Action)
	}
	if err := envelope.Data.Validate(); err != nil {
		return fmt.Errorf("invalid advisory: %w", err)
	}

	s.multicaster.Multicast(&envelope.Data, envelope.Action)
	return nil
}
