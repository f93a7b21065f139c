package memory

import (
	"context"
	"sync"
	"time"

	"orders-service/internal/domain/entities"
	"orders-service/internal/domain/repositories"
)

// OrderRepositoryMemory keeps orders in process memory. It is used in tests
// and when no MongoDB URI is configured. Pagination follows insertion order.
type OrderRepositoryMemory struct {
	mu     sync.RWMutex
	orders map[string]*entities.Order
	ids    []string
}

func NewOrderRepositoryMemory() *OrderRepositoryMemory {
	return &OrderRepositoryMemory{
		orders: make(map[string]*entities.Order),
	}
}

func (r *OrderRepositoryMemory) Create(ctx context.Context, order *entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return repositories.ErrOrderAlreadyExists
	}

	r.orders[order.ID] = copyOrder(order)
	r.ids = append(r.ids, order.ID)
	return nil
}

func (r *OrderRepositoryMemory) GetByID(ctx context.Context, orderID string) (*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[orderID]
	if !exists {
		return nil, repositories.ErrOrderNotFound
	}

	return copyOrder(order), nil
}

func (r *OrderRepositoryMemory) List(ctx context.Context, page, limit int, status *entities.OrderStatus) ([]*entities.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*entities.Order, 0, len(r.ids))
	for _, id := range r.ids {
		order := r.orders[id]
		if status != nil && order.Status != *status {
			continue
		}
		matched = append(matched, order)
	}

	total := int64(len(matched))

	start := (page - 1) * limit
	if start >= len(matched) {
		return []*entities.Order{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	pageOrders := make([]*entities.Order, 0, end-start)
	for _, order := range matched[start:end] {
		pageOrders = append(pageOrders, copyOrder(order))
	}

	return pageOrders, total, nil
}

func (r *OrderRepositoryMemory) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return nil, repositories.ErrOrderNotFound
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return copyOrder(order), nil
}

func (r *OrderRepositoryMemory) MarkPaid(ctx context.Context, orderID, chargeID, receiptURL string, paidAt time.Time) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return nil, repositories.ErrOrderNotFound
	}

	if order.Paid {
		// Payment fields are written at most once.
		return copyOrder(order), nil
	}

	order.Status = entities.StatusPaid
	order.Paid = true
	order.PaidAt = &paidAt
	order.StripeChargeID = chargeID
	order.Receipt = &entities.OrderReceipt{
		ReceiptURL: receiptURL,
		CreatedAt:  paidAt,
	}
	order.UpdatedAt = paidAt

	return copyOrder(order), nil
}

func copyOrder(order *entities.Order) *entities.Order {
	orderCopy := *order
	orderCopy.Items = make([]entities.OrderItem, len(order.Items))
	copy(orderCopy.Items, order.Items)
	if order.Receipt != nil {
		receiptCopy := *order.Receipt
		orderCopy.Receipt = &receiptCopy
	}
	if order.PaidAt != nil {
		paidAtCopy := *order.PaidAt
		orderCopy.PaidAt = &paidAtCopy
	}
	return &orderCopy
}
