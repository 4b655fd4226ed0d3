package messaging

import amqp "github.com/rabbitmq/amqp091-go"

// Broker topology shared with the order and user services. Names are part of
// the inter-service contract and must not change.
const (
	ProductExchange = "product.exchange"
	OrderExchange   = "order.exchange"
	UserExchange    = "user.exchange"

	ProductCreatedQueue = "product.created.queue"
	ProductUpdatedQueue = "product.updated.queue"
	ProductDeletedQueue = "product.deleted.queue"
	OrderQueue          = "product-service.order.queue"
	UserQueue           = "product-service.user.queue"

	ProductCreatedKey = "product.created"
	ProductUpdatedKey = "product.updated"
	ProductDeletedKey = "product.deleted"
	OrderRoutingKey   = "order.*"
	UserRoutingKey    = "user.*"

	// Dead-letter fabric, owned by this service. Poison messages from the
	// consumer queues end up here instead of looping forever.
	DeadLetterExchange = "product-service.dlx"
	OrderDLQ           = "product-service.order.dlq"
	UserDLQ            = "product-service.user.dlq"
)

// DeclareTopology declares every exchange, queue and binding this service
// relies on. All declarations are idempotent, so this runs on every start.
func DeclareTopology(mq *RabbitMQ) error {
	for _, exchange := range []string{ProductExchange, OrderExchange, UserExchange, DeadLetterExchange} {
		if err := mq.DeclareExchange(exchange); err != nil {
			return err
		}
	}

	// Product queues: exact routing key per event type, because downstream
	// services subscribe to different subsets.
	productQueues := []struct {
		queue string
		key   string
	}{
		{ProductCreatedQueue, ProductCreatedKey},
		{ProductUpdatedQueue, ProductUpdatedKey},
		{ProductDeletedQueue, ProductDeletedKey},
	}
	for _, q := range productQueues {
		if err := mq.DeclareQueue(q.queue, nil); err != nil {
			return err
		}
		if err := mq.BindQueue(q.queue, ProductExchange, q.key); err != nil {
			return err
		}
	}

	// Consumer queues: wildcard bindings, dead-lettered to our DLX.
	dlxArgs := amqp.Table{"x-dead-letter-exchange": DeadLetterExchange}

	if err := mq.DeclareQueue(OrderQueue, dlxArgs); err != nil {
		return err
	}
	if err := mq.BindQueue(OrderQueue, OrderExchange, OrderRoutingKey); err != nil {
		return err
	}

	if err := mq.DeclareQueue(UserQueue, dlxArgs); err != nil {
		return err
	}
	if err := mq.BindQueue(UserQueue, UserExchange, UserRoutingKey); err != nil {
		return err
	}

	if err := mq.DeclareQueue(OrderDLQ, nil); err != nil {
		return err
	}
	if err := mq.BindQueue(OrderDLQ, DeadLetterExchange, OrderRoutingKey); err != nil {
		return err
	}

	if err := mq.DeclareQueue(UserDLQ, nil); err != nil {
		return err
	}
	if err := mq.BindQueue(UserDLQ, DeadLetterExchange, UserRoutingKey); err != nil {
		return err
	}

	return nil
}
