package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OrderID        string             `bson:"order_id"`
	Items          []ItemDocument     `bson:"items"`
	TotalAmount    float64            `bson:"total_amount"`
	TotalItems     int                `bson:"total_items"`
	Status         string             `bson:"status"`
	Paid           bool               `bson:"paid"`
	PaidAt         *time.Time         `bson:"paid_at,omitempty"`
	StripeChargeID string             `bson:"stripe_charge_id,omitempty"`
	Receipt        *ReceiptDocument   `bson:"receipt,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

type ItemDocument struct {
	ProductID string  `bson:"product_id"`
	Quantity  int     `bson:"quantity"`
	Price     float64 `bson:"price"`
}

type ReceiptDocument struct {
	ReceiptURL string    `bson:"receipt_url"`
	CreatedAt  time.Time `bson:"created_at"`
}
