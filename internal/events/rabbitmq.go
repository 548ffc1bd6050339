package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitExchange is the durable topic exchange events are published to.
// Routing keys are the event types, so consumers can bind "order.*".
const RabbitExchange = "hotel_events"

const publishTimeout = 10 * time.Second

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	conn *amqp.Connection
	ch   amqpChannel
	log  *logger.Logger
}

// NewRabbitPublisher dials url, opens a channel and declares the exchange.
func NewRabbitPublisher(url string, log *logger.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newRabbitPublisher(ch, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	log.LogProcess("RABBITMQ", "connected, exchange "+RabbitExchange+" ready")
	return p, nil
}

func newRabbitPublisher(ch amqpChannel, log *logger.Logger) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(RabbitExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", RabbitExchange, err)
	}
	return &RabbitPublisher{ch: ch, log: log}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, RabbitExchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID.String(),
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	p.log.Debug("RABBITMQ", fmt.Sprintf("published %s (%d bytes)", e.Type, len(body)))
	return nil
}

func (p *RabbitPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
