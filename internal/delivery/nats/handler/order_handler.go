package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"orders-service/internal/domain/clients"
	"orders-service/internal/domain/entities"
	"orders-service/internal/domain/repositories"
	"orders-service/internal/usecase"

	"github.com/nats-io/nats.go"
)

// Subjects the order service answers on. Request subjects carry a reply
// inbox; payment.succeeded is a fire-and-forget event.
const (
	SubjectCreateOrder       = "createOrder"
	SubjectFindAllOrders     = "findAllOrders"
	SubjectFindOneOrder      = "findOneOrder"
	SubjectChangeOrderStatus = "changeOrderStatus"
	SubjectPaymentSucceeded  = "payment.succeeded"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
	timeout      time.Duration
	logger       *slog.Logger
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase, timeout time.Duration, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
		timeout:      timeout,
		logger:       logger,
	}
}

// Subscribe registers every handler on the connection. Request subjects use
// a queue group so horizontally scaled instances share the load.
func (h *OrderHandler) Subscribe(nc *nats.Conn, queue string) ([]*nats.Subscription, error) {
	type binding struct {
		subject string
		handle  func(ctx context.Context, data []byte) []byte
	}

	bindings := []binding{
		{SubjectCreateOrder, h.handleCreateOrder},
		{SubjectFindAllOrders, h.handleFindAllOrders},
		{SubjectFindOneOrder, h.handleFindOneOrder},
		{SubjectChangeOrderStatus, h.handleChangeOrderStatus},
	}

	subs := make([]*nats.Subscription, 0, len(bindings)+1)
	for _, b := range bindings {
		sub, err := nc.QueueSubscribe(b.subject, queue, h.respond(b.subject, b.handle))
		if err != nil {
			return subs, err
		}
		subs = append(subs, sub)
	}

	eventSub, err := nc.QueueSubscribe(SubjectPaymentSucceeded, queue, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		h.handlePaymentSucceeded(ctx, msg.Data)
	})
	if err != nil {
		return subs, err
	}
	subs = append(subs, eventSub)

	return subs, nil
}

func (h *OrderHandler) respond(subject string, handle func(ctx context.Context, data []byte) []byte) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		reply := handle(ctx, msg.Data)

		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			h.logger.Error("failed to respond", "subject", subject, "error", err)
		}
	}
}

func (h *OrderHandler) handleCreateOrder(ctx context.Context, data []byte) []byte {
	var req createOrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return h.marshal(errorResponse{Error: &errorBody{http.StatusBadRequest, "invalid createOrder payload"}})
	}

	items := make([]entities.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = entities.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order, session, err := h.orderUseCase.CreateOrder(ctx, items)
	if err != nil {
		if order != nil {
			// Order persisted, session failed. Never hide the order.
			return h.marshal(createOrderResponse{Order: order, Error: mapError(err)})
		}
		return h.marshal(errorResponse{Error: mapError(err)})
	}

	return h.marshal(createOrderResponse{Order: order, PaymentSession: session})
}

func (h *OrderHandler) handleFindAllOrders(ctx context.Context, data []byte) []byte {
	var req paginationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return h.marshal(errorResponse{Error: &errorBody{http.StatusBadRequest, "invalid findAllOrders payload"}})
	}

	page, err := h.orderUseCase.FindAll(ctx, req.Page, req.Limit, req.Status)
	if err != nil {
		return h.marshal(errorResponse{Error: mapError(err)})
	}

	return h.marshal(findAllResponse{Data: page.Data, Meta: page.Meta})
}

func (h *OrderHandler) handleFindOneOrder(ctx context.Context, data []byte) []byte {
	var req findOneRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return h.marshal(errorResponse{Error: &errorBody{http.StatusBadRequest, "invalid findOneOrder payload"}})
	}

	order, err := h.orderUseCase.FindOne(ctx, req.ID)
	if err != nil {
		return h.marshal(errorResponse{Error: mapError(err)})
	}

	return h.marshal(orderResponse{Order: order})
}

func (h *OrderHandler) handleChangeOrderStatus(ctx context.Context, data []byte) []byte {
	var req changeStatusRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return h.marshal(errorResponse{Error: &errorBody{http.StatusBadRequest, "invalid changeOrderStatus payload"}})
	}

	order, err := h.orderUseCase.ChangeStatus(ctx, req.ID, req.Status)
	if err != nil {
		return h.marshal(errorResponse{Error: mapError(err)})
	}

	return h.marshal(orderResponse{Order: order})
}

// handlePaymentSucceeded has no caller waiting on a reply, so every failure
// is logged for operational follow-up instead.
func (h *OrderHandler) handlePaymentSucceeded(ctx context.Context, data []byte) {
	var event paidOrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("invalid payment.succeeded payload", "error", err)
		return
	}

	order, err := h.orderUseCase.PaidOrder(ctx, event.OrderID, event.StripeID, event.ReceiptURL)
	if err != nil {
		h.logger.Error("failed to apply payment.succeeded event",
			"order_id", event.OrderID,
			"stripe_id", event.StripeID,
			"error", err)
		return
	}

	h.logger.Info("order marked as paid",
		"order_id", order.ID,
		"stripe_id", event.StripeID)
}

func (h *OrderHandler) marshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal reply", "error", err)
		return []byte(`{"error":{"status":500,"message":"internal server error"}}`)
	}
	return data
}

func mapError(err error) *errorBody {
	switch {
	case errors.Is(err, usecase.ErrEmptyItems),
		errors.Is(err, usecase.ErrInvalidItem),
		errors.Is(err, usecase.ErrInvalidOrderID),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidPagination),
		errors.Is(err, usecase.ErrInvalidPaidEvent),
		errors.Is(err, usecase.ErrProductNotFound),
		errors.Is(err, clients.ErrRejected):
		return &errorBody{Status: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, repositories.ErrOrderNotFound):
		return &errorBody{Status: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, clients.ErrUnavailable):
		return &errorBody{Status: http.StatusServiceUnavailable, Message: err.Error()}
	default:
		return &errorBody{Status: http.StatusInternalServerError, Message: "internal server error"}
	}
}
