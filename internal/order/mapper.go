package order

import (
	"time"

	"velora-api/internal/address"

	"github.com/google/uuid"
)

// OwnerResponse carries only the id unless the owner was joined in.
type OwnerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

type Response struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	User            OwnerResponse   `json:"user"`
	OrderItems      []Item          `json:"orderItems"`
	ShippingAddress address.Address `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	OrderStatus     Status          `json:"orderStatus"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	DeliveredAt     *time.Time      `json:"deliveredAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func ToResponse(o *Order) *Response {
	if o == nil {
		return nil
	}

	owner := OwnerResponse{ID: o.UserID}
	if o.User != nil {
		owner.Name = o.User.Name
		owner.Email = o.User.Email
	}

	items := []Item(o.Items)
	if items == nil {
		items = []Item{}
	}

	return &Response{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		User:            owner,
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice,
		ShippingPrice:   o.ShippingPrice,
		TaxPrice:        o.TaxPrice,
		TotalPrice:      o.TotalPrice,
		OrderStatus:     o.OrderStatus,
		PaymentStatus:   o.PaymentStatus,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ToResponseList(orders []*Order) []*Response {
	out := make([]*Response, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToResponse(o))
	}
	return out
}
