package messaging

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(host string, port int, user, password string) (*RabbitMQ, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", user, password, host, port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	log.Println("✅ Connected to RabbitMQ")

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareExchange creates a durable topic exchange if it doesn't exist
func (r *RabbitMQ) DeclareExchange(name string) error {
	err := r.channel.ExchangeDeclare(
		name,    // exchange name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}

	log.Printf("✅ Exchange declared: %s", name)
	return nil
}

// DeclareQueue creates a durable queue if it doesn't exist. args carries
// optional queue arguments such as the dead-letter exchange.
func (r *RabbitMQ) DeclareQueue(name string, args amqp.Table) error {
	_, err := r.channel.QueueDeclare(
		name,  // queue name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		args,  // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}

	log.Printf("✅ Queue declared: %s", name)
	return nil
}

// BindQueue binds a queue to an exchange with a routing-key pattern
func (r *RabbitMQ) BindQueue(queue, exchange, routingKey string) error {
	err := r.channel.QueueBind(
		queue,      // queue name
		routingKey, // routing key pattern
		exchange,   // exchange
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s to %s (%s): %w", queue, exchange, routingKey, err)
	}

	log.Printf("✅ Queue bound: %s <- %s (%s)", queue, exchange, routingKey)
	return nil
}

// Publish sends a persistent JSON message to an exchange with a routing key
func (r *RabbitMQ) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	err := r.channel.PublishWithContext(ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf("📤 Message published: %s -> %s", routingKey, exchange)
	return nil
}

// Consume receives messages from a queue with manual acknowledgement.
// prefetch bounds the number of unacknowledged deliveries in flight.
func (r *RabbitMQ) Consume(queue string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := r.channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	messages, err := r.channel.Consume(
		queue, // queue name
		"",    // consumer tag
		false, // auto-ack (false = manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	log.Printf("👂 Listening on queue: %s", queue)
	return messages, nil
}

// Close closes the connection
func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
