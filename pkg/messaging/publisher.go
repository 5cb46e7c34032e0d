package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/agrofount/backoffice/pkg/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNotConnected is returned when publishing before Init or after Close
var ErrNotConnected = errors.New("message broker not connected")

// Routing keys for events fanned out to the websocket gateway and the
// storefront consumers
const (
	KeyUploadProgress = "upload.progress"
	KeyPriceUpdate    = "price.update"
)

var (
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
)

// Init dials the broker and declares the topic exchange
func Init(cfg *config.BrokerConfig) error {
	mu.Lock()
	defer mu.Unlock()

	c, err := amqp.Dial(cfg.URL)
	if err != nil {
		return err
	}

	channel, err := c.Channel()
	if err != nil {
		c.Close()
		return err
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		c.Close()
		return err
	}

	conn = c
	ch = channel
	exchange = cfg.Exchange
	return nil
}

// Publish sends a JSON-encoded event to the exchange under the routing key
func Publish(ctx context.Context, key string, payload interface{}) error {
	mu.Lock()
	defer mu.Unlock()

	if ch == nil {
		return ErrNotConnected
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
}

// Connected reports whether the broker link is up
func Connected() bool {
	mu.Lock()
	defer mu.Unlock()
	return ch != nil
}

// Close tears down the channel and connection
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if ch != nil {
		ch.Close()
		ch = nil
	}
	if conn != nil {
		conn.Close()
		conn = nil
	}
}
