package models

import (
	"fmt"
	"strings"
	"time"
)

// localDateTimeLayout matches the Jackson-style local date-time used on the
// wire by every service in the platform: ISO-8601 without a zone offset.
const localDateTimeLayout = "2006-01-02T15:04:05"

// LocalDateTime serializes a timestamp as "2006-01-02T15:04:05" so events
// stay byte-compatible with the other services' JSON.
type LocalDateTime struct {
	time.Time
}

func Now() LocalDateTime {
	return LocalDateTime{time.Now()}
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(localDateTimeLayout) + `"`), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := time.Parse(localDateTimeLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// ProductEventType classifies a product mutation.
type ProductEventType string

const (
	ProductCreated ProductEventType = "CREATED"
	ProductUpdated ProductEventType = "UPDATED"
	ProductDeleted ProductEventType = "DELETED"
)

// ProductEvent is the snapshot published on product.exchange after every
// catalog mutation. EventID is generated per publication so downstream
// consumers can deduplicate redeliveries.
type ProductEvent struct {
	EventID     string           `json:"eventId,omitempty"`
	ProductID   string           `json:"productId"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Price       float64          `json:"price,omitempty"`
	Stock       int              `json:"stock"`
	Category    string           `json:"category,omitempty"`
	EventType   ProductEventType `json:"eventType"`
	Timestamp   LocalDateTime    `json:"timestamp"`
}

// OrderEventType classifies an order lifecycle event. The order service owns
// this enum; anything we don't recognize maps to OrderEventUnrecognized.
type OrderEventType string

const (
	OrderCreated       OrderEventType = "ORDER_CREATED"
	OrderCancelled     OrderEventType = "ORDER_CANCELLED"
	OrderDeleted       OrderEventType = "ORDER_DELETED"
	OrderStatusUpdated OrderEventType = "ORDER_STATUS_UPDATED"

	OrderEventUnrecognized OrderEventType = ""
)

// ParseOrderEventType maps the wire string to a known type, or to the
// unrecognized fallback when the order service sends something new.
func ParseOrderEventType(s string) (OrderEventType, bool) {
	switch t := OrderEventType(s); t {
	case OrderCreated, OrderCancelled, OrderDeleted, OrderStatusUpdated:
		return t, true
	}
	return OrderEventUnrecognized, false
}

// StockDelta returns the signed stock adjustment this event type applies per
// ordered unit: -1 reserves, +1 releases, 0 leaves stock alone.
func (t OrderEventType) StockDelta() int {
	switch t {
	case OrderCreated:
		return -1
	case OrderCancelled, OrderDeleted:
		return +1
	}
	return 0
}

// OrderEvent is consumed from product-service.order.queue. The wire format is
// owned by the order service. EventID is a schema extension: legacy producers
// omit it, in which case duplicate deliveries cannot be detected.
type OrderEvent struct {
	EventID    string           `json:"eventId,omitempty"`
	OrderID    string           `json:"orderId"`
	EventType  string           `json:"eventType"`
	Status     string           `json:"status,omitempty"`
	OrderItems []OrderItemEvent `json:"orderItems"`
}

type OrderItemEvent struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UserEventType classifies a user lifecycle event.
type UserEventType string

const (
	UserCreated UserEventType = "USER_CREATED"
	UserUpdated UserEventType = "USER_UPDATED"
	UserDeleted UserEventType = "USER_DELETED"

	UserEventUnrecognized UserEventType = ""
)

func ParseUserEventType(s string) (UserEventType, bool) {
	switch t := UserEventType(s); t {
	case UserCreated, UserUpdated, UserDeleted:
		return t, true
	}
	return UserEventUnrecognized, false
}

// UserEvent is consumed from product-service.user.queue. It never affects
// product state; the consumer is a placeholder for future personalization.
type UserEvent struct {
	UserID    int64         `json:"userId"`
	Name      string        `json:"name,omitempty"`
	Email     string        `json:"email,omitempty"`
	Role      string        `json:"role,omitempty"`
	EventType string        `json:"eventType"`
	Timestamp LocalDateTime `json:"timestamp"`
}
