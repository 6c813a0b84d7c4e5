// SPDX-License-Identifier: GPL-3.0-only

// Package events publishes waitlist signup events to an AMQP exchange
// so downstream consumers (CRM sync, analytics) can fan out without
// touching the signup path. Publishing is best-effort: failures are
// logged by the caller and never surface to the client.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"megatron-server/commons"
	"megatron-server/crypto"
	"megatron-server/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange         = "megatron.events"
	JoinedRoutingKey = "waitlist.joined"
)

type JoinedEvent struct {
	EventID      string `json:"event_id"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
	ReferredBy   string `json:"referred_by,omitempty"`
	Source       string `json:"source,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher connects to AMQP_URL and declares the events exchange.
// An unset AMQP_URL disables event publishing and returns (nil, nil);
// callers treat a nil publisher as a no-op.
func NewPublisher() (*Publisher, error) {
	amqpURL := commons.GetEnv("AMQP_URL")
	if amqpURL == "" {
		commons.Logger.Warn("AMQP_URL is not set. Waitlist event publishing is disabled.")
		return nil, nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel: %w", err)
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("exchange declare: %w", err)
	}

	commons.Logger.Infof("Event publisher connected, exchange: %s", Exchange)
	return &Publisher{conn: conn, channel: ch}, nil
}

// PublishJoined emits a waitlist.joined event for a persisted entry.
func (p *Publisher) PublishJoined(ctx context.Context, entry *models.WaitlistEntry) error {
	if p == nil {
		return nil
	}

	eventID, err := crypto.GenerateRandomString("evt_", 8, "hex")
	if err != nil {
		return err
	}

	event := JoinedEvent{
		EventID:      eventID,
		Email:        entry.Email,
		ReferralCode: entry.ReferralCode,
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
	}
	if entry.ReferredBy != nil {
		event.ReferredBy = *entry.ReferredBy
	}
	if source, ok := entry.Metadata["source"].(string); ok {
		event.Source = source
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, Exchange, JoinedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
