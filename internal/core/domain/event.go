package domain

import (
	"strconv"
	"time"
)

// HistoryEvent is an immutable status/location record appended to a
// shipment's audit trail. Latitude and longitude are kept as the decimal
// strings the client submitted so the trail round-trips unchanged. Seq is the
// 1-based position in the trail and is unique per shipment.
type HistoryEvent struct {
	ID               string         `bson:"_id,omitempty"`
	ShipmentID       string         `bson:"shipment_id"`
	Seq              int64          `bson:"seq"`
	Status           ShipmentStatus `bson:"status"`
	Notes            string         `bson:"notes"`
	Latitude         string         `bson:"location_latitude"`
	Longitude        string         `bson:"location_longitude"`
	PlaceID          string         `bson:"location_place_id"`
	FormattedAddress string         `bson:"location_formatted_address"`
	CreatedAt        time.Time      `bson:"created_at"`
}

// Coordinates parses the stored decimal strings.
func (e HistoryEvent) Coordinates() (Coordinates, error) {
	lat, err := strconv.ParseFloat(e.Latitude, 64)
	if err != nil {
		return Coordinates{}, err
	}
	lng, err := strconv.ParseFloat(e.Longitude, 64)
	if err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Lat: lat, Lng: lng}, nil
}

// NextEventTime returns the creation time for a new event so that the trail
// stays non-decreasing even when the wall clock steps backwards.
func NextEventTime(now time.Time, last *HistoryEvent) time.Time {
	if last != nil && now.Before(last.CreatedAt) {
		return last.CreatedAt
	}
	return now
}

// NextSeq returns the trail position for the event appended after last.
func NextSeq(last *HistoryEvent) int64 {
	if last == nil {
		return 1
	}
	return last.Seq + 1
}

// FormatDegrees renders a coordinate the way history events store it.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
