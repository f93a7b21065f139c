package handler

import (
	"orders-service/internal/domain/entities"
	"orders-service/internal/usecase"
)

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type paginationRequest struct {
	Page   int                   `json:"page"`
	Limit  int                   `json:"limit"`
	Status *entities.OrderStatus `json:"status,omitempty"`
}

type findOneRequest struct {
	ID string `json:"id"`
}

type changeStatusRequest struct {
	ID     string               `json:"id"`
	Status entities.OrderStatus `json:"status"`
}

type paidOrderEvent struct {
	StripeID   string `json:"stripeId"`
	OrderID    string `json:"orderId"`
	ReceiptURL string `json:"receiptUrl"`
}

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error *errorBody `json:"error"`
}

type createOrderResponse struct {
	Order          *entities.Order          `json:"order"`
	PaymentSession *entities.PaymentSession `json:"paymentSession,omitempty"`
	// Error is set when the order was persisted but the payment session
	// request failed: the caller must still learn the order exists.
	Error *errorBody `json:"error,omitempty"`
}

type findAllResponse struct {
	Data []*entities.Order `json:"data"`
	Meta usecase.PageMeta  `json:"meta"`
}

type orderResponse struct {
	Order *entities.Order `json:"order"`
}
