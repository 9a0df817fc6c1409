package events

import (
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange        = "ecommerce.events"
	OrderPlacedRoutingKey = "order.placed.v1"
	storeServiceName      = "store-service-go"
	defaultPublishTimeout = 3 * time.Second
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Dial connects to RabbitMQ, retrying a few times while the broker starts.
func Dial(url string, logger *log.Logger) (*amqp.Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		logger.Printf("rabbitmq dial attempt %d failed: %v", attempt, err)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, fmt.Errorf("dial rabbitmq: %w", lastErr)
}
