package events

import (
	"fmt"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
)

// Driver names accepted by Open.
const (
	DriverLog      = "log"
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
)

// Options selects and configures the broker publisher.
type Options struct {
	Driver       string
	KafkaBrokers []string
	RabbitMQURL  string
}

// Open returns the publisher for opts.Driver. An empty driver means log.
func Open(opts Options, log *logger.Logger) (Publisher, error) {
	switch opts.Driver {
	case "", DriverLog:
		return NewLogPublisher(log), nil
	case DriverKafka:
		return NewKafkaPublisher(opts.KafkaBrokers, log)
	case DriverRabbitMQ:
		return NewRabbitPublisher(opts.RabbitMQURL, log)
	default:
		return nil, fmt.Errorf("unknown events driver %q", opts.Driver)
	}
}
