package ports

import (
	"context"
	"time"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

// UserRepository defines persistence for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// ListFilter carries the query parameters shared by every paginated list.
// UserID is enforced by the service layer (RBAC): empty means no owner filter.
type ListFilter struct {
	UserID string
	Status string // shipments only
	Search string
	Page   int // 1-based
	Limit  int // capped at MaxPageSize by the service
}

// ShipmentRepository defines persistence operations for shipments.
type ShipmentRepository interface {
	Create(ctx context.Context, s *domain.Shipment) error
	FindByID(ctx context.Context, id string) (*domain.Shipment, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Shipment, int64, error)
	// UpdateStatus moves the shipment from status from to status to and
	// records deliveredAt when non-nil. It returns ErrInvalidTransition when
	// the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.ShipmentStatus, deliveredAt *time.Time) error
	Delete(ctx context.Context, id string) error
	// CreatedSince returns every shipment created at or after since (metrics input).
	CreatedSince(ctx context.Context, since time.Time) ([]*domain.Shipment, error)
}

// HistoryRepository persists the append-only shipment trail.
type HistoryRepository interface {
	// Insert returns ErrHistoryConflict when e.Seq is already taken.
	Insert(ctx context.Context, e *domain.HistoryEvent) error
	// ListByShipment returns events in trail order, oldest first.
	ListByShipment(ctx context.Context, shipmentID string) ([]*domain.HistoryEvent, error)
	// Last returns the event with the highest Seq or nil when the trail is empty.
	Last(ctx context.Context, shipmentID string) (*domain.HistoryEvent, error)
	// Delete removes a single event that was never projected onto its shipment.
	Delete(ctx context.Context, id string) error
	DeleteByShipment(ctx context.Context, shipmentID string) error
}

// CarrierRepository persists carriers.
type CarrierRepository interface {
	Create(ctx context.Context, c *domain.Carrier) error
	FindByID(ctx context.Context, id string) (*domain.Carrier, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Carrier, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Carrier, int64, error)
	Update(ctx context.Context, c *domain.Carrier) error
	Delete(ctx context.Context, id string) error
}

// RouteRepository persists routes.
type RouteRepository interface {
	Create(ctx context.Context, r *domain.Route) error
	FindByID(ctx context.Context, id string) (*domain.Route, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Route, int64, error)
	Update(ctx context.Context, r *domain.Route) error
	Delete(ctx context.Context, id string) error
}
