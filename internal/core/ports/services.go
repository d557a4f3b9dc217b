package ports

import (
	"context"
	"time"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

// MaxPageSize caps every list endpoint.
const MaxPageSize = 100

// Actor identifies the authenticated caller for RBAC decisions.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// GeoInput is a geocoded endpoint as submitted by a form. Coordinates may be
// omitted, in which case the place id is resolved server-side.
type GeoInput struct {
	FormattedAddress string
	PlaceID          string
	Lat              *float64
	Lng              *float64
}

// CreateShipmentInput carries all data needed to create a new shipment.
type CreateShipmentInput struct {
	Actor             Actor
	Weight            float64
	Length            float64
	Width             float64
	Height            float64
	ProductType       string
	RecipientName     string
	RecipientPhone    string
	Origin            GeoInput
	Destination       GeoInput
	StartAt           time.Time
	DeliveryAt        time.Time
	DeliveryWindow    *time.Time
	AdditionalDetails string
	CarrierID         string
	RouteID           string
}

// ListResult is a page of items.
type ListResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
	Pages int
}

// ShipmentWithHistory is the tracking view payload.
type ShipmentWithHistory struct {
	Shipment *domain.Shipment
	History  []*domain.HistoryEvent
}

// ShipmentService defines use-case operations for shipments.
type ShipmentService interface {
	CreateShipment(ctx context.Context, in CreateShipmentInput) (*domain.Shipment, error)
	GetShipment(ctx context.Context, actor Actor, id string) (*ShipmentWithHistory, error)
	ListShipments(ctx context.Context, actor Actor, filter ListFilter) (*ListResult[*domain.Shipment], error)
	DeleteShipment(ctx context.Context, actor Actor, id string) error
}

// AddHistoryInput is the companion write path of the tracking view.
type AddHistoryInput struct {
	Actor            Actor
	ShipmentID       string
	Status           string
	Notes            string
	Latitude         string
	Longitude        string
	PlaceID          string
	FormattedAddress string
	IdempotencyKey   string
}

// HistoryService appends events to a shipment trail.
type HistoryService interface {
	AddHistory(ctx context.Context, in AddHistoryInput) (*domain.HistoryEvent, error)
}

// CarrierInput carries create and patch fields; nil pointers are left untouched on patch.
type CarrierInput struct {
	UserID             *string
	VehicleType        *string
	VehicleCapacity    *float64
	VehiclePlateNumber *string
	IsAvailable        *bool
}

// CarrierService manages carriers.
type CarrierService interface {
	Create(ctx context.Context, in CarrierInput) (*domain.Carrier, error)
	List(ctx context.Context, filter ListFilter) (*ListResult[*domain.Carrier], error)
	Update(ctx context.Context, id string, in CarrierInput) (*domain.Carrier, error)
	Delete(ctx context.Context, id string) error
}

// RouteInput carries create and patch fields; nil pointers are left untouched on patch.
type RouteInput struct {
	Name        *string
	Origin      *GeoInput
	Destination *GeoInput
	IsActive    *bool
}

// RouteService manages routes.
type RouteService interface {
	Create(ctx context.Context, in RouteInput) (*domain.Route, error)
	List(ctx context.Context, filter ListFilter) (*ListResult[*domain.Route], error)
	Update(ctx context.Context, id string, in RouteInput) (*domain.Route, error)
	Delete(ctx context.Context, id string) error
}

// MetricsService computes the dashboard aggregates.
type MetricsService interface {
	Dashboard(ctx context.Context) (*domain.DashboardMetrics, error)
}
