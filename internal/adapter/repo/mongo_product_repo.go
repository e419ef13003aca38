package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecomkit/shop-api/internal/domain"
	"github.com/ecomkit/shop-api/internal/usecase"
)

// productDoc is the persistence shape of a product (kept out of domain).
type productDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	Price             float64            `bson:"price"`
	Size              string             `bson:"size"`
	AvailableQuantity int64              `bson:"available_quantity"`
}

func (d productDoc) toDomain() domain.Product {
	return domain.Product{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Price:             d.Price,
		Size:              d.Size,
		AvailableQuantity: d.AvailableQuantity,
	}
}

type MongoProductRepo struct {
	coll *mongo.Collection
}

func NewMongoProductRepo(db *mongo.Database) *MongoProductRepo {
	return &MongoProductRepo{coll: db.Collection("products")}
}

func (r *MongoProductRepo) Insert(ctx context.Context, p domain.Product) (string, error) {
	doc := productDoc{
		Name:              p.Name,
		Price:             p.Price,
		Size:              p.Size,
		AvailableQuantity: p.AvailableQuantity,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *MongoProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", usecase.ErrInvalidProductID, id)
	}
	var doc productDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, usecase.ErrNotFound)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (r *MongoProductRepo) List(ctx context.Context, f usecase.ProductFilter, page usecase.Page) ([]domain.Product, int64, error) {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Size != "" {
		filter["size"] = f.Size
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page.Offset).
		SetLimit(page.Limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// DecrementStock is a single conditional update: the availability check and
// the decrement happen in one store operation, so concurrent orders cannot
// drive available_quantity negative.
func (r *MongoProductRepo) DecrementStock(ctx context.Context, id string, qty int64) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", usecase.ErrInvalidProductID, id)
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "available_quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"available_quantity": -qty}},
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoProductRepo) IncrementStock(ctx context.Context, id string, qty int64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", usecase.ErrInvalidProductID, id)
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"available_quantity": qty}},
	)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id, usecase.ErrNotFound)
	}
	return nil
}

var _ usecase.ProductRepo = (*MongoProductRepo)(nil)
