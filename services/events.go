package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName = "globetrail.events"
	ExchangeKind = "topic"
)

// Routing keys for domain events.
const (
	EventBookingCreated      = "booking.created"
	EventBookingConfirmed    = "booking.confirmed"
	EventBookingCancelled    = "booking.cancelled"
	EventHotelBookingCreated = "hotel_booking.created"
	EventItinerarySaved      = "itinerary.saved"
)

// Event is the envelope every published message carries.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher sends domain events to a RabbitMQ topic exchange. A nil
// *Publisher is valid and drops every event.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	log     *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	log.Info("✅ RabbitMQ connected", zap.String("exchange", ExchangeName))
	return &Publisher{conn: conn, channel: ch, log: log}, nil
}

// Publish marshals data into an Event and sends it under routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, data any) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(Event{Type: routingKey, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp channels are not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.Debug("event published", zap.String("routing_key", routingKey))
	return nil
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
