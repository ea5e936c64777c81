package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"velora-api/internal/address"

	"github.com/google/uuid"
)

// Item is a snapshot of a product at the time the order was placed.
type Item struct {
	Product  uuid.UUID `json:"product" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Image    string    `json:"image,omitempty"`
	Price    float64   `json:"price" validate:"gte=0"`
	Size     string    `json:"size,omitempty"`
	Color    string    `json:"color,omitempty"`
	Quantity int       `json:"quantity" validate:"gte=1"`
}

// Items is stored as a single JSONB document.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		it = Items{}
	}
	return json.Marshal(it)
}

func (it *Items) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*it = Items{}
		return nil
	case []byte:
		return json.Unmarshal(v, it)
	case string:
		return json.Unmarshal([]byte(v), it)
	default:
		return fmt.Errorf("order items: unsupported scan type %T", src)
	}
}

// Owner is the owning user's public identity, joined in on reads.
type Owner struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	UserID          uuid.UUID
	User            *Owner
	Items           Items
	ShippingAddress address.Address
	PaymentMethod   string
	ItemsPrice      float64
	ShippingPrice   float64
	TaxPrice        float64
	TotalPrice      float64
	OrderStatus     Status
	PaymentStatus   PaymentStatus
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateOrderInput carries client-computed prices; they are stored as submitted.
type CreateOrderInput struct {
	OrderItems      []Item          `json:"orderItems" validate:"dive"`
	ShippingAddress address.Address `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required"`
	ItemsPrice      float64         `json:"itemsPrice" validate:"gte=0"`
	ShippingPrice   float64         `json:"shippingPrice" validate:"gte=0"`
	TaxPrice        float64         `json:"taxPrice" validate:"gte=0"`
	TotalPrice      float64         `json:"totalPrice" validate:"gte=0"`
}
