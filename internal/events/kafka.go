package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
)

const kafkaTopicPrefix = "hotel."

// KafkaPublisher sends events to one topic per dashboard area
// (hotel.orders, hotel.reservations, hotel.rooms), keyed by aggregate id.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaPublisher connects a synchronous producer to brokers.
func NewKafkaPublisher(brokers []string, log *logger.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	log.LogProcess("KAFKA", fmt.Sprintf("connected to brokers %v", brokers))
	return NewKafkaPublisherWithProducer(producer, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, log: log}
}

// KafkaTopic returns the topic an event type is written to.
func KafkaTopic(eventType string) string {
	return kafkaTopicPrefix + enum.TopicForEvent(eventType)
}

func (p *KafkaPublisher) Publish(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	topic := KafkaTopic(e.Type)
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(e.Key),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(e.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	p.log.Debug("KAFKA", fmt.Sprintf("%s -> %s[%d]@%d", e.Type, topic, partition, offset))
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.log.LogProcess("KAFKA", "closing producer")
	return p.producer.Close()
}
