package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/microcommerce/product-service/internal/messaging"
	"github.com/microcommerce/product-service/internal/models"
)

// EventSender is the slice of the broker client the publisher needs.
type EventSender interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// ProductPublisher broadcasts product mutations on product.exchange. Publishes
// are fire-and-forget: the store mutation has already committed, so a send
// failure is logged and swallowed rather than surfaced to the caller. Stock
// correctness does not depend on this direction; downstream staleness is the
// accepted cost.
type ProductPublisher struct {
	sender EventSender
}

func NewProductPublisher(sender EventSender) *ProductPublisher {
	return &ProductPublisher{sender: sender}
}

// PublishProductCreated publishes a CREATED snapshot
func (p *ProductPublisher) PublishProductCreated(ctx context.Context, product *models.Product) {
	p.publish(ctx, snapshotEvent(product, models.ProductCreated), messaging.ProductCreatedKey)
}

// PublishProductUpdated publishes an UPDATED snapshot
func (p *ProductPublisher) PublishProductUpdated(ctx context.Context, product *models.Product) {
	p.publish(ctx, snapshotEvent(product, models.ProductUpdated), messaging.ProductUpdatedKey)
}

// PublishProductDeleted publishes a DELETED stub carrying only the id
func (p *ProductPublisher) PublishProductDeleted(ctx context.Context, productID string) {
	event := models.ProductEvent{
		EventID:   uuid.NewString(),
		ProductID: productID,
		EventType: models.ProductDeleted,
		Timestamp: models.Now(),
	}
	p.publish(ctx, event, messaging.ProductDeletedKey)
}

func snapshotEvent(product *models.Product, eventType models.ProductEventType) models.ProductEvent {
	return models.ProductEvent{
		EventID:     uuid.NewString(),
		ProductID:   product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    product.Category,
		EventType:   eventType,
		Timestamp:   models.Now(),
	}
}

func (p *ProductPublisher) publish(ctx context.Context, event models.ProductEvent, routingKey string) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to marshal %s event for product %s: %v", event.EventType, event.ProductID, err)
		return
	}

	err = p.sender.Publish(ctx, messaging.ProductExchange, routingKey, body)
	if err != nil {
		// One retry after a short pause covers channel hiccups; beyond that
		// the event is dropped. A cancelled context skips the retry so
		// shutdown is not held up by a dead broker.
		select {
		case <-ctx.Done():
			log.Printf("❌ Failed to publish %s event for product %s: %v", event.EventType, event.ProductID, err)
			return
		case <-time.After(100 * time.Millisecond):
		}
		err = p.sender.Publish(ctx, messaging.ProductExchange, routingKey, body)
	}
	if err != nil {
		log.Printf("❌ Failed to publish %s event for product %s: %v", event.EventType, event.ProductID, err)
		return
	}

	log.Printf("📤 Published %s event for product %s", event.EventType, event.ProductID)
}
