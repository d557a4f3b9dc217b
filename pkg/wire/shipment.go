package wire

import "time"

// Shipment is the flat JSON projection of a shipment.
type Shipment struct {
	ID                       string     `json:"id"`
	TrackingNumber           string     `json:"tracking_number"`
	UserID                   string     `json:"user_id"`
	Weight                   float64    `json:"weight"`
	Length                   float64    `json:"length"`
	Width                    float64    `json:"width"`
	Height                   float64    `json:"height"`
	ProductType              string     `json:"product_type"`
	RecipientName            string     `json:"recipient_name"`
	RecipientPhone           string     `json:"recipient_phone"`
	OriginFormattedAddress   string     `json:"origin_formatted_address"`
	OriginPlaceID            string     `json:"origin_place_id"`
	OriginLatitude           float64    `json:"origin_latitude"`
	OriginLongitude          float64    `json:"origin_longitude"`
	DestinationFormattedAddr string     `json:"destination_formatted_address"`
	DestinationPlaceID       string     `json:"destination_place_id"`
	DestinationLatitude      float64    `json:"destination_latitude"`
	DestinationLongitude     float64    `json:"destination_longitude"`
	StartDateTime            time.Time  `json:"start_date_time"`
	DeliveryDateTime         time.Time  `json:"delivery_date_time"`
	WindowDeliveryTime       *time.Time `json:"window_delivery_time,omitempty"`
	AdditionalDetails        string     `json:"additional_details,omitempty"`
	Status                   string     `json:"status"`
	CarrierID                string     `json:"carrier_id,omitempty"`
	RouteID                  string     `json:"route_id,omitempty"`
	DeliveredAt              *time.Time `json:"delivered_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// CreateShipmentRequest mirrors the create-shipment form. Coordinates are
// optional; when absent the place ids are geocoded server-side.
type CreateShipmentRequest struct {
	Weight                   float64    `json:"weight"                        validate:"required,gt=0"`
	Length                   float64    `json:"length"                        validate:"required,gt=0"`
	Width                    float64    `json:"width"                         validate:"required,gt=0"`
	Height                   float64    `json:"height"                        validate:"required,gt=0"`
	ProductType              string     `json:"product_type"                  validate:"required"`
	RecipientName            string     `json:"recipient_name"                validate:"required"`
	RecipientPhone           string     `json:"recipient_phone"               validate:"required"`
	OriginFormattedAddress   string     `json:"origin_formatted_address"      validate:"required"`
	OriginPlaceID            string     `json:"origin_place_id"               validate:"required"`
	OriginLatitude           *float64   `json:"origin_latitude,omitempty"`
	OriginLongitude          *float64   `json:"origin_longitude,omitempty"`
	DestinationFormattedAddr string     `json:"destination_formatted_address" validate:"required"`
	DestinationPlaceID       string     `json:"destination_place_id"          validate:"required"`
	DestinationLatitude      *float64   `json:"destination_latitude,omitempty"`
	DestinationLongitude     *float64   `json:"destination_longitude,omitempty"`
	StartDateTime            time.Time  `json:"start_date_time"               validate:"required"`
	DeliveryDateTime         time.Time  `json:"delivery_date_time"            validate:"required,gtfield=StartDateTime"`
	WindowDeliveryTime       *time.Time `json:"window_delivery_time,omitempty"`
	AdditionalDetails        string     `json:"additional_details,omitempty"`
	CarrierID                string     `json:"carrier_id,omitempty"`
	RouteID                  string     `json:"route_id,omitempty"`
}

// History is one event of a shipment trail. Coordinates stay decimal strings.
type History struct {
	ID                       string    `json:"id"`
	ShipmentID               string    `json:"shipment_id"`
	Status                   string    `json:"status"`
	Notes                    string    `json:"notes"`
	LocationLatitude         string    `json:"location_latitude"`
	LocationLongitude        string    `json:"location_longitude"`
	LocationPlaceID          string    `json:"location_place_id"`
	LocationFormattedAddress string    `json:"location_formatted_address"`
	CreatedAt                time.Time `json:"created_at"`
}

// AddHistoryRequest is the body of POST /shipments/:id/history.
type AddHistoryRequest struct {
	Status                   string `json:"status"                     validate:"required,oneof=PENDING IN_TRANSIT DELIVERED CANCELLED"`
	Notes                    string `json:"notes"`
	LocationLatitude         string `json:"location_latitude"          validate:"required,latitude"`
	LocationLongitude        string `json:"location_longitude"         validate:"required,longitude"`
	LocationPlaceID          string `json:"location_place_id"          validate:"required"`
	LocationFormattedAddress string `json:"location_formatted_address" validate:"required"`
}

// ShipmentWithHistory is the tracking view payload.
type ShipmentWithHistory struct {
	Shipment Shipment  `json:"shipment"`
	History  []History `json:"history"`
}
