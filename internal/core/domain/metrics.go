package domain

// CarrierPerformance summarises delivered work per carrier.
type CarrierPerformance struct {
	CarrierID          string
	CarrierName        string
	AvgDeliveryHours   float64
	CompletedShipments int
	OnTimeDeliveries   int
}

// TimelinePoint counts shipments created on one calendar day, by current status.
type TimelinePoint struct {
	Date      string // YYYY-MM-DD, UTC
	Pending   int
	InTransit int
	Completed int
}

// TopCarrier ranks carriers by volume.
type TopCarrier struct {
	CarrierID      string
	CarrierName    string
	TotalShipments int
	SuccessRate    float64 // delivered / total, 0..1
}

// DashboardMetrics is the aggregate payload behind the dashboard.
type DashboardMetrics struct {
	CarrierPerformance []CarrierPerformance
	Timeline           []TimelinePoint
	TopCarriers        []TopCarrier
}
