package natsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orders-service/internal/domain/clients"
	"orders-service/internal/domain/entities"

	"github.com/nats-io/nats.go"
)

// Subjects of the external services this core calls.
const (
	SubjectValidateProducts     = "validate_products"
	SubjectCreatePaymentSession = "create.payment.session"
)

// ProductValidatorClient asks the catalog service for authoritative product
// records over NATS request/reply.
type ProductValidatorClient struct {
	nc      *nats.Conn
	timeout time.Duration
}

func NewProductValidatorClient(nc *nats.Conn, timeout time.Duration) *ProductValidatorClient {
	return &ProductValidatorClient{nc: nc, timeout: timeout}
}

func (c *ProductValidatorClient) Validate(ctx context.Context, productIDs []string) ([]entities.Product, error) {
	data, err := json.Marshal(productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product ids: %w", err)
	}

	msg, err := request(ctx, c.nc, SubjectValidateProducts, data, c.timeout)
	if err != nil {
		return nil, err
	}

	var products []entities.Product
	if err := decodeReply(msg.Data, &products); err != nil {
		return nil, fmt.Errorf("%s: %w", SubjectValidateProducts, err)
	}

	return products, nil
}

// PaymentSessionClient asks the payment service to open a session for a
// persisted order.
type PaymentSessionClient struct {
	nc      *nats.Conn
	timeout time.Duration
}

func NewPaymentSessionClient(nc *nats.Conn, timeout time.Duration) *PaymentSessionClient {
	return &PaymentSessionClient{nc: nc, timeout: timeout}
}

type paymentSessionRequest struct {
	OrderID  string               `json:"orderId"`
	Currency string               `json:"currency"`
	Items    []paymentSessionItem `json:"items"`
}

type paymentSessionItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (c *PaymentSessionClient) CreateSession(ctx context.Context, order *entities.Order, currency string) (*entities.PaymentSession, error) {
	payload := paymentSessionRequest{
		OrderID:  order.ID,
		Currency: currency,
		Items:    make([]paymentSessionItem, len(order.Items)),
	}
	for i, item := range order.Items {
		payload.Items[i] = paymentSessionItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment session request: %w", err)
	}

	msg, err := request(ctx, c.nc, SubjectCreatePaymentSession, data, c.timeout)
	if err != nil {
		return nil, err
	}

	var session entities.PaymentSession
	if err := decodeReply(msg.Data, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", SubjectCreatePaymentSession, err)
	}

	return &session, nil
}

// request issues one bounded request/reply call. Timeouts, missing
// responders and connection failures all surface as ErrUnavailable so the
// caller can treat them as retryable.
func request(ctx context.Context, nc *nats.Conn, subject string, data []byte, timeout time.Duration) (*nats.Msg, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := nc.RequestWithContext(reqCtx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", clients.ErrUnavailable, subject, err)
	}

	return msg, nil
}

type errorReply struct {
	Error *struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeReply unmarshals a reply payload, surfacing a structured error reply
// from the upstream as ErrRejected.
func decodeReply(data []byte, v interface{}) error {
	var probe errorReply
	if err := json.Unmarshal(data, &probe); err == nil && probe.Error != nil {
		return fmt.Errorf("%w: %s", clients.ErrRejected, probe.Error.Message)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	return nil
}
