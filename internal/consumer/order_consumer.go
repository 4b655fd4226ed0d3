package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/microcommerce/product-service/internal/db"
	"github.com/microcommerce/product-service/internal/models"
)

// Deduper claims an event id exactly once so redelivered events are dropped
// instead of double-applied. Release undoes a claim when the claimed event
// was not applied after all, so its requeued redelivery can claim it again.
type Deduper interface {
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// StockPublisher re-broadcasts the post-adjustment product state so other
// services see the stock the order just changed.
type StockPublisher interface {
	PublishProductUpdated(ctx context.Context, product *models.Product)
}

// ItemOutcome is the typed result of applying one order line.
type ItemOutcome struct {
	ProductID string
	Quantity  int
	NewStock  int
	Err       error
}

// BatchOutcome aggregates the per-item results of one order event. The
// delivery loop uses it to decide between ack, requeue and dead-letter.
type BatchOutcome struct {
	Items []ItemOutcome
}

func (b BatchOutcome) Applied() int {
	n := 0
	for _, item := range b.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

// Transient reports whether any item failed with an error that a redelivery
// could fix. NotFound and InsufficientStock are final: redelivering would
// just fail the same way.
func (b BatchOutcome) Transient() bool {
	for _, item := range b.Items {
		if item.Err == nil {
			continue
		}
		if errors.Is(item.Err, db.ErrNotFound) || errors.Is(item.Err, db.ErrInsufficientStock) {
			continue
		}
		return true
	}
	return false
}

// OrderConsumer applies order lifecycle events to the stock counters.
type OrderConsumer struct {
	store    db.ProductStore
	pub      StockPublisher
	dedup    Deduper
	workers  int
	timeout  time.Duration
	dedupTTL time.Duration
}

// NewOrderConsumer builds a consumer. pub and dedup may be nil: without pub no
// PRODUCT_UPDATED re-broadcast happens, without dedup every delivery is
// applied (plain at-least-once).
func NewOrderConsumer(store db.ProductStore, pub StockPublisher, dedup Deduper, workers int, timeout, dedupTTL time.Duration) *OrderConsumer {
	if workers < 1 {
		workers = 1
	}
	return &OrderConsumer{
		store:    store,
		pub:      pub,
		dedup:    dedup,
		workers:  workers,
		timeout:  timeout,
		dedupTTL: dedupTTL,
	}
}

// Start drains the delivery channel with the configured number of workers and
// blocks until the channel closes. Stock safety under concurrent workers
// rests on the store's atomic AdjustStock, not on scheduling.
func (c *OrderConsumer) Start(ctx context.Context, deliveries <-chan amqp.Delivery) {
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range deliveries {
				c.handleDelivery(ctx, msg)
			}
		}()
	}
	wg.Wait()
	log.Println("Order consumer stopped")
}

// handleDelivery parses, deduplicates and processes one delivery, then
// acknowledges it. Ack happens only after the store mutations committed;
// failures that redelivery cannot fix are rejected to the dead-letter queue.
func (c *OrderConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("❌ Failed to parse order event: %v", err)
		msg.Reject(false) // dead-letter, don't requeue bad messages
		return
	}

	if err := validateOrderEvent(event); err != nil {
		log.Printf("❌ Invalid order event %s: %v", event.OrderID, err)
		msg.Reject(false)
		return
	}

	var dedupKey string
	if c.dedup != nil && event.EventID != "" {
		key := "order-event:" + event.EventID
		claimed, err := c.dedup.ClaimOnce(ctx, key, c.dedupTTL)
		if err != nil {
			log.Printf("⚠️ Dedup check failed for order %s, applying anyway: %v", event.OrderID, err)
		} else if !claimed {
			log.Printf("🔁 Duplicate order event %s (order %s), skipping", event.EventID, event.OrderID)
			msg.Ack(false)
			return
		} else {
			dedupKey = key
		}
	}

	outcome := c.ProcessEvent(ctx, event)

	if outcome.Transient() {
		// The claim must not outlive this attempt, or the requeued
		// redelivery would be skipped as a duplicate.
		if dedupKey != "" {
			if err := c.dedup.Release(ctx, dedupKey); err != nil {
				log.Printf("⚠️ Failed to release dedup claim for event %s: %v", event.EventID, err)
			}
		}
		if msg.Redelivered {
			log.Printf("☠️ Order %s failed twice, dead-lettering", event.OrderID)
			msg.Reject(false)
		} else {
			log.Printf("⚠️ Order %s hit a transient failure, requeueing", event.OrderID)
			msg.Nack(false, true)
		}
		return
	}

	msg.Ack(false)
}

// ProcessEvent applies one order event to the store and returns the per-item
// results. Items are independent: an unknown product skips that item only,
// the rest of the batch still applies.
func (c *OrderConsumer) ProcessEvent(ctx context.Context, event models.OrderEvent) BatchOutcome {
	eventType, known := models.ParseOrderEventType(event.EventType)
	if !known {
		log.Printf("⚠️ Unrecognized order event type %q (order %s), discarding", event.EventType, event.OrderID)
		return BatchOutcome{}
	}

	if eventType == models.OrderStatusUpdated {
		// Status changes never touch stock, whatever the status says.
		log.Printf("📋 Order %s status updated to %q, no stock effect", event.OrderID, event.Status)
		return BatchOutcome{}
	}

	log.Printf("📥 Processing %s for order %s (%d items)", eventType, event.OrderID, len(event.OrderItems))

	var outcome BatchOutcome
	adjusted := make(map[string]bool)

	for _, item := range event.OrderItems {
		delta := eventType.StockDelta() * item.Quantity
		newStock, err := c.store.AdjustStock(ctx, item.ProductID, delta)

		outcome.Items = append(outcome.Items, ItemOutcome{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			NewStock:  newStock,
			Err:       err,
		})

		switch {
		case err == nil:
			log.Printf("✅ Adjusted stock for product %s by %+d -> %d", item.ProductID, delta, newStock)
			adjusted[item.ProductID] = true
		case errors.Is(err, db.ErrNotFound):
			log.Printf("⚠️ Product %s not found, skipping item", item.ProductID)
		case errors.Is(err, db.ErrInsufficientStock):
			log.Printf("⚠️ Rejected stock adjustment %+d for product %s: would go negative", delta, item.ProductID)
		default:
			log.Printf("❌ Failed to adjust stock for product %s: %v", item.ProductID, err)
		}
	}

	c.broadcastUpdates(ctx, adjusted)

	log.Printf("📦 Order %s processed: %d/%d items applied", event.OrderID, outcome.Applied(), len(outcome.Items))
	return outcome
}

func (c *OrderConsumer) broadcastUpdates(ctx context.Context, productIDs map[string]bool) {
	if c.pub == nil {
		return
	}
	for id := range productIDs {
		product, err := c.store.GetByID(ctx, id)
		if err != nil {
			log.Printf("⚠️ Could not re-read product %s for broadcast: %v", id, err)
			continue
		}
		c.pub.PublishProductUpdated(ctx, product)
	}
}

func validateOrderEvent(event models.OrderEvent) error {
	if event.EventType == "" {
		return fmt.Errorf("missing eventType")
	}
	for i, item := range event.OrderItems {
		if item.ProductID == "" {
			return fmt.Errorf("item %d: missing productId", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive, got %d", i, item.Quantity)
		}
	}
	return nil
}
