package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

const collectionHistory = "shipment_history"

// Trail order is the per-shipment sequence; created_at may tie.
var (
	historyOldestFirst = bson.D{{Key: "seq", Value: 1}}
	historyNewestFirst = bson.D{{Key: "seq", Value: -1}}
)

// HistoryRepository stores the append-only trail in its own collection, one
// document per event.
type HistoryRepository struct {
	col *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{col: db.Collection(collectionHistory)}
}

func (r *HistoryRepository) Insert(ctx context.Context, e *domain.HistoryEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert history seq %d: %w", e.Seq, domain.ErrHistoryConflict)
		}
		return err
	}
	return nil
}

// ListByShipment returns the trail oldest first.
func (r *HistoryRepository) ListByShipment(ctx context.Context, shipmentID string) ([]*domain.HistoryEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(historyOldestFirst)
	cur, err := r.col.Find(ctx, bson.M{"shipment_id": shipmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := []*domain.HistoryEvent{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

func (r *HistoryRepository) Last(ctx context.Context, shipmentID string) (*domain.HistoryEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(historyNewestFirst)
	var e domain.HistoryEvent
	if err := r.col.FindOne(ctx, bson.M{"shipment_id": shipmentID}, opts).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *HistoryRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *HistoryRepository) DeleteByShipment(ctx context.Context, shipmentID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"shipment_id": shipmentID})
	return err
}

func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, historyIndexes())
	return err
}

// historyIndexes makes two appends that read the same last event collide on
// insert instead of sharing a trail position.
func historyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "shipment_id", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("shipment_seq_unique"),
	}}
}
