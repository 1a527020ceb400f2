package models

import "time"

// Product event types published on every successful mutation.
const (
	EventProductCreated             = "product.created"
	EventProductUpdated             = "product.updated"
	EventProductAvailabilityToggled = "product.availability_toggled"
	EventProductDeleted             = "product.deleted"
)

// ProductEvent describes a change to a single product.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uint      `json:"productId"`
	Product    *Product  `json:"product,omitempty"` // nil for deletions
	OccurredAt time.Time `json:"occurredAt"`
}

// NewProductEvent builds an event stamped with the current UTC time.
func NewProductEvent(eventType string, id uint, product *Product) ProductEvent {
	return ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}
