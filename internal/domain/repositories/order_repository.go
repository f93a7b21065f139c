package repositories

import (
	"context"
	"time"

	"orders-service/internal/domain/entities"
)

// OrderRepository is the persistence port for orders. Every operation is
// atomic at the store level; Create persists the order together with its
// line items as one unit.
type OrderRepository interface {
	Create(ctx context.Context, order *entities.Order) error
	GetByID(ctx context.Context, orderID string) (*entities.Order, error)
	// List returns one offset-based page of orders plus the total count for
	// the given filter. page and limit are both 1-based and positive.
	List(ctx context.Context, page, limit int, status *entities.OrderStatus) ([]*entities.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (*entities.Order, error)
	// MarkPaid records the payment exactly once: repeated calls for an
	// already-paid order return the stored order without modifying the
	// payment fields.
	MarkPaid(ctx context.Context, orderID, chargeID, receiptURL string, paidAt time.Time) (*entities.Order, error)
}

var (
	ErrOrderNotFound      = &RepositoryError{"order not found"}
	ErrOrderAlreadyExists = &RepositoryError{"order already exists"}
)

type RepositoryError struct {
	message string
}

func (e *RepositoryError) Error() string {
	return e.message
}
