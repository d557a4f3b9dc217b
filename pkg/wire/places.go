package wire

// PlaceSuggestion is one address-widget autocomplete candidate.
type PlaceSuggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// LatLng is a point of a directions path.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Directions is the path between two points as returned by GET /api/directions.
type Directions struct {
	Mode string   `json:"mode"`
	Path []LatLng `json:"path"`
}
