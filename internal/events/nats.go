// Package events publishes turn lifecycle notifications over NATS so other
// services (or UIs) can follow chat activity without polling.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// TurnEvent is published after a chat turn is persisted, successful or not.
type TurnEvent struct {
	ChatID    uuid.UUID `json:"chatId"`
	MessageID uuid.UUID `json:"messageId"`
	Success   bool      `json:"success"`
	Plot      bool      `json:"plot"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher connects to NATS. An empty URL disables publishing; every
// method on a nil Publisher is a no-op.
func NewPublisher(natsURL string, logger zerolog.Logger) (*Publisher, error) {
	if natsURL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: nc, logger: logger}, nil
}

// PublishTurn emits the event on chat.<chatID>.turn. Publish failures are
// logged, never propagated: eventing must not break a finished turn.
func (slf *Publisher) PublishTurn(event TurnEvent) {
	if slf == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slf.logger.Error().Err(err).Msg("nats: marshal turn event")
		return
	}

	subject := fmt.Sprintf("chat.%s.turn", event.ChatID)
	if err := slf.conn.Publish(subject, data); err != nil {
		slf.logger.Error().Err(err).Str("subject", subject).Msg("nats: publish turn event")
	}
}

// Close drains the connection.
func (slf *Publisher) Close() {
	if slf == nil {
		return
	}
	_ = slf.conn.Drain()
}
