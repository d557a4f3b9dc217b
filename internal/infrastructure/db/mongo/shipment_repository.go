package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

const collectionShipments = "shipments"

type ShipmentRepository struct {
	col *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{col: db.Collection(collectionShipments)}
}

// Create inserts a new shipment document.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateShipment
		}
		return err
	}
	return nil
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Shipment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, notFound(err, domain.ErrShipmentNotFound)
	}
	return &s, nil
}

// List pages through shipments, newest first. Search matches the tracking
// number, recipient name or either address.
func (r *ShipmentRepository) List(ctx context.Context, f ports.ListFilter) ([]*domain.Shipment, int64, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		filter["$or"] = bson.A{
			bson.M{"tracking_number": p},
			bson.M{"recipient.name": p},
			bson.M{"origin.formatted_address": p},
			bson.M{"destination.formatted_address": p},
		}
	}

	var out []*domain.Shipment
	total, err := findPage(ctx, r.col, filter, f, &out)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipments: %w", err)
	}
	return out, total, nil
}

func (r *ShipmentRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ShipmentStatus, deliveredAt *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(to), "updated_at": time.Now().UTC()}
	if deliveredAt != nil {
		set["delivered_at"] = deliveredAt.UTC()
	}

	res, err := r.col.UpdateOne(ctx, statusFilter(id, from), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrShipmentNotFound
	}
	return fmt.Errorf("%w: status is no longer %s", domain.ErrInvalidTransition, from)
}

// statusFilter matches the shipment only while it still has status from.
func statusFilter(id string, from domain.ShipmentStatus) bson.M {
	return bson.M{"_id": id, "status": string(from)}
}

func (r *ShipmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (r *ShipmentRepository) CreatedSince(ctx context.Context, since time.Time) ([]*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"created_at": bson.M{"$gte": since.UTC()}})
	if err != nil {
		return nil, fmt.Errorf("shipments since: %w", err)
	}
	var out []*domain.Shipment
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("shipments since: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the shipments collection.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
