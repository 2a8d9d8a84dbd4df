// Package service provides the publisher that hands domain events to
// RabbitMQ.  Publish errors are logged and returned so callers can
// ignore them without interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/amielle/duty-roster/internal/queue"
)

// Publisher publishes notification events.  A fresh connection is
// dialed per publish; throughput on this path is tiny and the broker
// being down must never take a request down with it.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher for the broker at the given URL.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Notify publishes a NotificationEvent to the duty.notifications
// queue.  Messages are marked persistent so they survive broker
// restarts.  Any error is logged and returned; callers on the booking
// and approval paths deliberately discard it.
func (p *Publisher) Notify(ctx context.Context, ev queue.NotificationEvent) error {
	if ev.CreatedAt == "" {
		ev.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("publisher: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("publisher: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.NotificationQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn("publisher: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.NotificationQueueName, false, false, pub); err != nil {
		p.log.Warn("publisher: publish failed", zap.Error(err))
		return err
	}
	return nil
}
