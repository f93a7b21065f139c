package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orders-service/internal/domain/clients"
	"orders-service/internal/domain/entities"
	"orders-service/internal/domain/repositories"

	"github.com/google/uuid"
)

type OrderUseCase struct {
	orderRepo repositories.OrderRepository
	products  clients.ProductValidator
	payments  clients.PaymentClient
	currency  string
	logger    *slog.Logger
}

func NewOrderUseCase(
	orderRepo repositories.OrderRepository,
	products clients.ProductValidator,
	payments clients.PaymentClient,
	currency string,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		products:  products,
		payments:  payments,
		currency:  currency,
		logger:    logger,
	}
}

// OrderPage is one page of orders plus pagination metadata.
type OrderPage struct {
	Data []*entities.Order `json:"data"`
	Meta PageMeta          `json:"meta"`
}

type PageMeta struct {
	Page     int   `json:"page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"lastPage"`
}

// CreateOrder validates the requested products against the catalog, prices
// the line items from the catalog (never from the request), persists the
// order and then asks the payment service for a session.
//
// Any failure before persistence leaves no order behind. If the payment
// session request fails after the order is persisted, the persisted order is
// returned together with the error so the caller learns the order exists.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, items []entities.OrderItem) (*entities.Order, *entities.PaymentSession, error) {
	if len(items) == 0 {
		return nil, nil, ErrEmptyItems
	}

	productIDs := make([]string, 0, len(items))
	for i, item := range items {
		if item.ProductID == "" {
			return nil, nil, fmt.Errorf("%w: item %d has no product id", ErrInvalidItem, i)
		}
		if item.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: item %d has invalid quantity", ErrInvalidItem, i)
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := uc.products.Validate(ctx, productIDs)
	if err != nil {
		uc.logger.Error("product validation failed", "error", err)
		return nil, nil, fmt.Errorf("validate products: %w", err)
	}

	priced, totalAmount, totalItems, err := priceLineItems(items, productIndex(products))
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	order := &entities.Order{
		ID:          uuid.New().String(),
		Items:       priced,
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		Status:      entities.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	session, err := uc.payments.CreateSession(ctx, order, uc.currency)
	if err != nil {
		// The order is already durable. No rollback: the caller gets the
		// persisted order paired with the session error.
		uc.logger.Error("payment session request failed after order was persisted",
			"order_id", order.ID,
			"error", err)
		return order, nil, fmt.Errorf("create payment session: %w", err)
	}

	return order, session, nil
}

// FindAll returns one page of orders, optionally filtered by status.
func (uc *OrderUseCase) FindAll(ctx context.Context, page, limit int, status *entities.OrderStatus) (*OrderPage, error) {
	if page < 1 || limit < 1 {
		return nil, ErrInvalidPagination
	}
	if status != nil && !entities.ValidStatus(*status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *status)
	}

	orders, total, err := uc.orderRepo.List(ctx, page, limit, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	lastPage := int((total + int64(limit) - 1) / int64(limit))

	return &OrderPage{
		Data: orders,
		Meta: PageMeta{
			Page:     page,
			Total:    total,
			LastPage: lastPage,
		},
	}, nil
}

// FindOne reads an order and refreshes the line-item display names from the
// catalog. Stored snapshot prices are authoritative and are never replaced
// with current catalog prices.
func (uc *OrderUseCase) FindOne(ctx context.Context, orderID string) (*entities.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if len(order.Items) == 0 {
		return order, nil
	}

	productIDs := make([]string, len(order.Items))
	for i, item := range order.Items {
		productIDs[i] = item.ProductID
	}

	products, err := uc.products.Validate(ctx, productIDs)
	if err != nil {
		uc.logger.Error("product validation failed", "order_id", orderID, "error", err)
		return nil, fmt.Errorf("validate products: %w", err)
	}

	catalog := productIndex(products)
	for i := range order.Items {
		if product, ok := catalog[order.Items[i].ProductID]; ok {
			order.Items[i].Name = product.Name
		}
	}

	return order, nil
}

// ChangeStatus moves an order to the requested status. Requesting the status
// the order already has is a no-op success and issues no store write.
func (uc *OrderUseCase) ChangeStatus(ctx context.Context, orderID string, status entities.OrderStatus) (*entities.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	if !entities.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	// Plain store read: catalog enrichment is a display concern and has no
	// place on the status path.
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order for update: %w", err)
	}

	if order.Status == status {
		return order, nil
	}

	updated, err := uc.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return updated, nil
}

// PaidOrder applies a payment-succeeded event. Redelivery of the same event
// is a no-op: the store records the payment fields at most once.
func (uc *OrderUseCase) PaidOrder(ctx context.Context, orderID, chargeID, receiptURL string) (*entities.Order, error) {
	if orderID == "" || chargeID == "" {
		return nil, ErrInvalidPaidEvent
	}

	order, err := uc.orderRepo.MarkPaid(ctx, orderID, chargeID, receiptURL, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, fmt.Errorf("payment for unknown order %s: %w", orderID, err)
		}
		return nil, fmt.Errorf("failed to mark order as paid: %w", err)
	}

	return order, nil
}

var (
	ErrEmptyItems        = errors.New("items list cannot be empty")
	ErrInvalidItem       = errors.New("invalid item")
	ErrInvalidOrderID    = errors.New("invalid order ID")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidPagination = errors.New("page and limit must be positive")
	ErrInvalidPaidEvent  = errors.New("paid event requires order id and charge id")
	ErrProductNotFound   = errors.New("product not found in catalog")
)
