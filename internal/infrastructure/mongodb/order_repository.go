package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"orders-service/internal/domain/entities"
	"orders-service/internal/domain/repositories"
)

type OrderRepositoryMongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

func NewOrderRepositoryMongo(uri, dbName string, logger *slog.Logger) (*OrderRepositoryMongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(dbName).Collection("orders")

	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &OrderRepositoryMongo{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

func (r *OrderRepositoryMongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Create persists the order and its line items as a single document, which
// makes the order+items write atomic.
func (r *OrderRepositoryMongo) Create(ctx context.Context, order *entities.Order) error {
	doc := toOrderDocument(order)

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *OrderRepositoryMongo) GetByID(ctx context.Context, orderID string) (*entities.Order, error) {
	var doc OrderDocument
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return toOrderEntity(&doc), nil
}

func (r *OrderRepositoryMongo) List(ctx context.Context, page, limit int, status *entities.OrderStatus) ([]*entities.Order, int64, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = string(*status)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []OrderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]*entities.Order, len(docs))
	for i := range docs {
		orders[i] = toOrderEntity(&docs[i])
	}

	return orders, total, nil
}

func (r *OrderRepositoryMongo) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (*entities.Order, error) {
	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc OrderDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"order_id": orderID}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return toOrderEntity(&doc), nil
}

// MarkPaid uses a conditional update on paid=false, so concurrent or
// redelivered payment events can never overwrite payment fields that are
// already set.
func (r *OrderRepositoryMongo) MarkPaid(ctx context.Context, orderID, chargeID, receiptURL string, paidAt time.Time) (*entities.Order, error) {
	update := bson.M{"$set": bson.M{
		"status":           string(entities.StatusPaid),
		"paid":             true,
		"paid_at":          paidAt,
		"stripe_charge_id": chargeID,
		"receipt": ReceiptDocument{
			ReceiptURL: receiptURL,
			CreatedAt:  paidAt,
		},
		"updated_at": paidAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"order_id": orderID, "paid": false}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order as paid: %w", err)
	}

	if result.MatchedCount == 0 {
		// Either the order does not exist or it is already paid. Re-read to
		// tell the two apart; the already-paid case is an idempotent no-op.
		order, err := r.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Paid {
			r.logger.Info("payment already recorded, skipping",
				"order_id", orderID,
				"charge_id", chargeID)
			return order, nil
		}
		return nil, fmt.Errorf("failed to mark order as paid: order %s matched no document", orderID)
	}

	return r.GetByID(ctx, orderID)
}

func toOrderDocument(order *entities.Order) *OrderDocument {
	doc := &OrderDocument{
		OrderID:        order.ID,
		TotalAmount:    order.TotalAmount,
		TotalItems:     order.TotalItems,
		Status:         string(order.Status),
		Paid:           order.Paid,
		PaidAt:         order.PaidAt,
		StripeChargeID: order.StripeChargeID,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
		Items:          make([]ItemDocument, len(order.Items)),
	}

	for i, item := range order.Items {
		doc.Items[i] = ItemDocument{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if order.Receipt != nil {
		doc.Receipt = &ReceiptDocument{
			ReceiptURL: order.Receipt.ReceiptURL,
			CreatedAt:  order.Receipt.CreatedAt,
		}
	}

	return doc
}

func toOrderEntity(doc *OrderDocument) *entities.Order {
	items := make([]entities.OrderItem, len(doc.Items))
	for i, item := range doc.Items {
		items[i] = entities.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order := &entities.Order{
		ID:             doc.OrderID,
		Items:          items,
		TotalAmount:    doc.TotalAmount,
		TotalItems:     doc.TotalItems,
		Status:         entities.OrderStatus(doc.Status),
		Paid:           doc.Paid,
		PaidAt:         doc.PaidAt,
		StripeChargeID: doc.StripeChargeID,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}

	if doc.Receipt != nil {
		order.Receipt = &entities.OrderReceipt{
			ReceiptURL: doc.Receipt.ReceiptURL,
			CreatedAt:  doc.Receipt.CreatedAt,
		}
	}

	return order
}
