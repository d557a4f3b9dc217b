package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

const collectionCarriers = "carriers"

type CarrierRepository struct {
	col *mongo.Collection
}

func NewCarrierRepository(db *mongo.Database) *CarrierRepository {
	return &CarrierRepository{col: db.Collection(collectionCarriers)}
}

func (r *CarrierRepository) Create(ctx context.Context, c *domain.Carrier) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *CarrierRepository) FindByID(ctx context.Context, id string) (*domain.Carrier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Carrier
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err, domain.ErrCarrierNotFound)
	}
	return &c, nil
}

func (r *CarrierRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Carrier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find carriers: %w", err)
	}
	var out []*domain.Carrier
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("find carriers: %w", err)
	}
	return out, nil
}

func (r *CarrierRepository) List(ctx context.Context, f ports.ListFilter) ([]*domain.Carrier, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		p := containsPattern(f.Search)
		filter["$or"] = bson.A{
			bson.M{"vehicle_type": p},
			bson.M{"vehicle_plate_number": p},
		}
	}

	var out []*domain.Carrier
	total, err := findPage(ctx, r.col, filter, f, &out)
	if err != nil {
		return nil, 0, fmt.Errorf("list carriers: %w", err)
	}
	return out, total, nil
}

func (r *CarrierRepository) Update(ctx context.Context, c *domain.Carrier) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrCarrierNotFound
	}
	return nil
}

func (r *CarrierRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrCarrierNotFound
	}
	return nil
}

func (r *CarrierRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}
