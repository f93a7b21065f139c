package clients

import (
	"context"

	"orders-service/internal/domain/entities"
)

// ProductValidator resolves product ids against the catalog service and
// returns the authoritative record for every id that exists. Duplicates in
// the input yield one record per distinct id; callers look results up by id.
type ProductValidator interface {
	Validate(ctx context.Context, productIDs []string) ([]entities.Product, error)
}

// PaymentClient asks the payment service for a session covering the given
// order. It must only be called after the order is durably persisted.
type PaymentClient interface {
	CreateSession(ctx context.Context, order *entities.Order, currency string) (*entities.PaymentSession, error)
}

var (
	// ErrUnavailable covers timeouts and transport failures: the caller may
	// retry the whole operation.
	ErrUnavailable = &ClientError{"upstream service unavailable"}
	// ErrRejected means the upstream answered with an error reply; retrying
	// the same request will not help.
	ErrRejected = &ClientError{"upstream service rejected the request"}
)

type ClientError struct {
	message string
}

func (e *ClientError) Error() string {
	return e.message
}
