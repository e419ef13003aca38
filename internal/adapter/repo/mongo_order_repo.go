package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecomkit/shop-api/internal/domain"
	"github.com/ecomkit/shop-api/internal/usecase"
)

type orderLineDoc struct {
	ProductID string  `bson:"product_id"`
	Quantity  int64   `bson:"quantity"`
	Price     float64 `bson:"price"`
}

type orderDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Items       []orderLineDoc     `bson:"items"`
	TotalAmount float64            `bson:"total_amount"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d orderDoc) toDomain() domain.Order {
	items := make([]domain.OrderLine, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return domain.Order{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Items:       items,
		TotalAmount: d.TotalAmount,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type MongoOrderRepo struct {
	coll *mongo.Collection
}

func NewMongoOrderRepo(db *mongo.Database) *MongoOrderRepo {
	return &MongoOrderRepo{coll: db.Collection("orders")}
}

func (r *MongoOrderRepo) Insert(ctx context.Context, o domain.Order) (string, error) {
	items := make([]orderLineDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderLineDoc{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	doc := orderDoc{
		UserID:      o.UserID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *MongoOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed order id cannot match any document.
		return nil, fmt.Errorf("order %s: %w", id, usecase.ErrNotFound)
	}
	var doc orderDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %s: %w", id, usecase.ErrNotFound)
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	o := doc.toDomain()
	return &o, nil
}

func (r *MongoOrderRepo) ListByUser(ctx context.Context, userID string, page usecase.Page) ([]domain.Order, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page.Offset).
		SetLimit(page.Limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

var _ usecase.OrderRepo = (*MongoOrderRepo)(nil)
