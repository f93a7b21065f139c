package entities

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func ValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusPaid, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID             string        `json:"id"`
	Items          []OrderItem   `json:"items"`
	TotalAmount    float64       `json:"totalAmount"`
	TotalItems     int           `json:"totalItems"`
	Status         OrderStatus   `json:"status"`
	Paid           bool          `json:"paid"`
	PaidAt         *time.Time    `json:"paidAt,omitempty"`
	StripeChargeID string        `json:"stripeChargeId,omitempty"`
	Receipt        *OrderReceipt `json:"receipt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// Price is snapshotted from the catalog at order creation and is never
	// recomputed afterwards.
	Price float64 `json:"price"`
	// Name is a display field refreshed from the catalog on reads; it is not
	// persisted with the order.
	Name string `json:"name,omitempty"`
}

type OrderReceipt struct {
	ReceiptURL string    `json:"receiptUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}
