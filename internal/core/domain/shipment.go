package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ShipmentStatus represents the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "PENDING"
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	StatusDelivered ShipmentStatus = "DELIVERED"
	StatusCancelled ShipmentStatus = "CANCELLED"
)

// validTransitions defines the allowed state machine transitions. A status may
// repeat itself: a shipment in transit reports several IN_TRANSIT locations.
var validTransitions = map[ShipmentStatus][]ShipmentStatus{
	StatusPending:   {StatusPending, StatusInTransit, StatusDelivered, StatusCancelled},
	StatusInTransit: {StatusInTransit, StatusDelivered, StatusCancelled},
}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid shipment status")
	ErrShipmentNotFound  = errors.New("shipment not found")
	ErrDuplicateShipment = errors.New("shipment already exists")
	ErrDuplicateHistory  = errors.New("history event already recorded")
	ErrHistoryConflict   = errors.New("history changed concurrently")
	ErrGeocodeFailed     = errors.New("failed to geocode place")
)

// ParseShipmentStatus normalises s and reports whether it is a known status.
func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	st := ShipmentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidTransition, wrapped with the reason, when
// next may not follow s.
func (s ShipmentStatus) CheckTransition(next ShipmentStatus) error {
	switch {
	case s.CanTransitionTo(next):
		return nil
	case s.IsTerminal():
		return fmt.Errorf("%w: shipment is already %s", ErrInvalidTransition, s)
	default:
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, s, next)
	}
}

// IsTerminal reports whether no further history may be appended.
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

// IsZero reports whether the point was never resolved.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// GeoPoint is a geocoded endpoint: the address the user picked, the provider's
// place reference and the resolved coordinates.
type GeoPoint struct {
	FormattedAddress string      `bson:"formatted_address"`
	PlaceID          string      `bson:"place_id"`
	Coordinates      Coordinates `bson:"coordinates"`
}

// Dimensions represents the physical size of a package in centimetres.
type Dimensions struct {
	Length float64 `bson:"length"`
	Width  float64 `bson:"width"`
	Height float64 `bson:"height"`
}

// Recipient is the contact receiving the package.
type Recipient struct {
	Name  string `bson:"name"`
	Phone string `bson:"phone"`
}

// Shipment is the core aggregate root.
type Shipment struct {
	ID                string         `bson:"_id,omitempty"`
	TrackingNumber    string         `bson:"tracking_number"`
	UserID            string         `bson:"user_id"`
	Weight            float64        `bson:"weight"`
	Dimensions        Dimensions     `bson:"dimensions"`
	ProductType       string         `bson:"product_type"`
	Recipient         Recipient      `bson:"recipient"`
	Origin            GeoPoint       `bson:"origin"`
	Destination       GeoPoint       `bson:"destination"`
	StartAt           time.Time      `bson:"start_at"`
	DeliveryAt        time.Time      `bson:"delivery_at"`
	DeliveryWindow    *time.Time     `bson:"delivery_window,omitempty"`
	AdditionalDetails string         `bson:"additional_details,omitempty"`
	Status            ShipmentStatus `bson:"status"`
	CarrierID         string         `bson:"carrier_id,omitempty"`
	RouteID           string         `bson:"route_id,omitempty"`
	DeliveredAt       *time.Time     `bson:"delivered_at,omitempty"`
	CreatedAt         time.Time      `bson:"created_at"`
	UpdatedAt         time.Time      `bson:"updated_at"`
}

// VisibleTo reports whether the given actor may read or mutate the shipment.
func (s *Shipment) VisibleTo(role, userID string) bool {
	return role == RoleAdmin || s.UserID == userID
}
