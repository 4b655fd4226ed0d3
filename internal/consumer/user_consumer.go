package consumer

import (
	"encoding/json"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/microcommerce/product-service/internal/models"
)

// UserConsumer receives user lifecycle events. It only logs them today; the
// contract is receive, acknowledge, no side effect on product data. It stays
// wired as the extension point for future personalization state.
type UserConsumer struct {
	workers int
}

func NewUserConsumer(workers int) *UserConsumer {
	if workers < 1 {
		workers = 1
	}
	return &UserConsumer{workers: workers}
}

// Start drains the delivery channel until it closes.
func (c *UserConsumer) Start(deliveries <-chan amqp.Delivery) {
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range deliveries {
				c.handleDelivery(msg)
			}
		}()
	}
	wg.Wait()
	log.Println("User consumer stopped")
}

func (c *UserConsumer) handleDelivery(msg amqp.Delivery) {
	var event models.UserEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("❌ Failed to parse user event: %v", err)
		msg.Reject(false)
		return
	}

	c.ProcessEvent(event)
	msg.Ack(false)
}

// ProcessEvent dispatches on the event type. Every branch is a logging stub.
func (c *UserConsumer) ProcessEvent(event models.UserEvent) {
	eventType, known := models.ParseUserEventType(event.EventType)
	if !known {
		log.Printf("⚠️ Unrecognized user event type %q (user %d)", event.EventType, event.UserID)
		return
	}

	switch eventType {
	case models.UserCreated:
		c.handleUserCreated(event)
	case models.UserUpdated:
		c.handleUserUpdated(event)
	case models.UserDeleted:
		c.handleUserDeleted(event)
	}
}

func (c *UserConsumer) handleUserCreated(event models.UserEvent) {
	log.Printf("👤 User created - ID: %d, Name: %s, Email: %s", event.UserID, event.Name, event.Email)
	// Room for per-user recommendation or preference bootstrap.
}

func (c *UserConsumer) handleUserUpdated(event models.UserEvent) {
	log.Printf("👤 User updated - ID: %d, Name: %s, Email: %s", event.UserID, event.Name, event.Email)
}

func (c *UserConsumer) handleUserDeleted(event models.UserEvent) {
	log.Printf("👤 User deleted - ID: %d, cleaning up user data in product service", event.UserID)
}
