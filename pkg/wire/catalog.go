package wire

import "time"

type Carrier struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	VehicleType        string    `json:"vehicle_type"`
	VehicleCapacity    float64   `json:"vehicle_capacity"`
	VehiclePlateNumber string    `json:"vehicle_plate_number"`
	IsAvailable        bool      `json:"is_available"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CarrierRequest is used for create (POST) and patch (PATCH). Omitted
// fields are left untouched on patch.
type CarrierRequest struct {
	UserID             *string  `json:"user_id,omitempty"`
	VehicleType        *string  `json:"vehicle_type,omitempty"          validate:"omitempty,min=1"`
	VehicleCapacity    *float64 `json:"vehicle_capacity,omitempty"      validate:"omitempty,gt=0"`
	VehiclePlateNumber *string  `json:"vehicle_plate_number,omitempty"  validate:"omitempty,min=1"`
	IsAvailable        *bool    `json:"is_available,omitempty"`
}

type Route struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	OriginFormattedAddress   string    `json:"origin_formatted_address"`
	OriginPlaceID            string    `json:"origin_place_id"`
	OriginLatitude           float64   `json:"origin_latitude"`
	OriginLongitude          float64   `json:"origin_longitude"`
	DestinationFormattedAddr string    `json:"destination_formatted_address"`
	DestinationPlaceID       string    `json:"destination_place_id"`
	DestinationLatitude      float64   `json:"destination_latitude"`
	DestinationLongitude     float64   `json:"destination_longitude"`
	IsActive                 bool      `json:"is_active"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// RouteRequest is used for create and patch. An endpoint is replaced only
// when its place id is present.
type RouteRequest struct {
	Name                     *string  `json:"name,omitempty"                     validate:"omitempty,min=1"`
	OriginFormattedAddress   string   `json:"origin_formatted_address,omitempty"`
	OriginPlaceID            string   `json:"origin_place_id,omitempty"`
	OriginLatitude           *float64 `json:"origin_latitude,omitempty"`
	OriginLongitude          *float64 `json:"origin_longitude,omitempty"`
	DestinationFormattedAddr string   `json:"destination_formatted_address,omitempty"`
	DestinationPlaceID       string   `json:"destination_place_id,omitempty"`
	DestinationLatitude      *float64 `json:"destination_latitude,omitempty"`
	DestinationLongitude     *float64 `json:"destination_longitude,omitempty"`
	IsActive                 *bool    `json:"is_active,omitempty"`
}
