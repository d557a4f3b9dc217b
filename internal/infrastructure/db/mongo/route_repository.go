package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

const collectionRoutes = "routes"

type RouteRepository struct {
	col *mongo.Collection
}

func NewRouteRepository(db *mongo.Database) *RouteRepository {
	return &RouteRepository{col: db.Collection(collectionRoutes)}
}

func (r *RouteRepository) Create(ctx context.Context, rt *domain.Route) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, rt)
	return err
}

func (r *RouteRepository) FindByID(ctx context.Context, id string) (*domain.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rt domain.Route
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rt); err != nil {
		return nil, notFound(err, domain.ErrRouteNotFound)
	}
	return &rt, nil
}

func (r *RouteRepository) List(ctx context.Context, f ports.ListFilter) ([]*domain.Route, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = containsPattern(f.Search)
	}

	var out []*domain.Route
	total, err := findPage(ctx, r.col, filter, f, &out)
	if err != nil {
		return nil, 0, fmt.Errorf("list routes: %w", err)
	}
	return out, total, nil
}

func (r *RouteRepository) Update(ctx context.Context, rt *domain.Route) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": rt.ID}, rt)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (r *RouteRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}
