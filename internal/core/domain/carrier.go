package domain

import (
	"errors"
	"time"
)

var (
	ErrCarrierNotFound = errors.New("carrier not found")
	ErrRouteNotFound   = errors.New("route not found")
)

// Carrier is a vehicle operated by a registered user.
type Carrier struct {
	ID                 string    `bson:"_id,omitempty"`
	UserID             string    `bson:"user_id"`
	VehicleType        string    `bson:"vehicle_type"`
	VehicleCapacity    float64   `bson:"vehicle_capacity"`
	VehiclePlateNumber string    `bson:"vehicle_plate_number"`
	IsAvailable        bool      `bson:"is_available"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

// Route is a named, geocoded origin/destination pair shipments can be assigned to.
type Route struct {
	ID          string    `bson:"_id,omitempty"`
	Name        string    `bson:"name"`
	Origin      GeoPoint  `bson:"origin"`
	Destination GeoPoint  `bson:"destination"`
	IsActive    bool      `bson:"is_active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}
