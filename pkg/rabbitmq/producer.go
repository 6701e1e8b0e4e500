/**
 * @description
 * This package publishes domain events to a RabbitMQ topic exchange. The
 * server emits `bank.linked` when a provisioning chain completes and
 * `transaction.created` after a transfer is recorded, so downstream
 * consumers (notification email, cache invalidation) observe new state
 * without the request path waiting on them.
 *
 * @dependencies
 * - github.com/rabbitmq/amqp091-go: The AMQP client.
 * - github.com/google/uuid: event ids.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange all Horizon events go through.
const Exchange = "horizon_events"

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
	Close()
}

// EventProducer publishes events to a RabbitMQ exchange.
type EventProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewEventProducer connects to RabbitMQ and declares the durable topic
// exchange.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &EventProducer{conn: conn, channel: ch}, nil
}

// Publish sends a JSON message with the given routing key.
func (p *EventProducer) Publish(ctx context.Context, routingKey string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Printf("Error marshalling event body for %s: %v", routingKey, err)
		return err
	}
	err = p.channel.PublishWithContext(ctx,
		Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Timestamp:   time.Now(),
			Body:        jsonBody,
		},
	)
	if err != nil {
		log.Printf("Failed to publish event %s: %v", routingKey, err)
		return err
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopProducer is a fallback publisher used when RabbitMQ is not configured
// or unavailable at startup. It logs events instead of failing hard.
type NoopProducer struct{}

// Publish logs the event that would have been published.
func (NoopProducer) Publish(ctx context.Context, routingKey string, body interface{}) error {
	log.Printf("[MQ-FALLBACK] Would publish routingKey='%s' body=%v", routingKey, body)
	return nil
}

// Close is a no-op.
func (NoopProducer) Close() {}
