package wire

type CarrierPerformance struct {
	CarrierID          string  `json:"carrierId"`
	CarrierName        string  `json:"carrierName"`
	AvgDeliveryTime    float64 `json:"avgDeliveryTime"` // hours
	CompletedShipments int     `json:"completedShipments"`
	OnTimeDeliveries   int     `json:"onTimeDeliveries"`
}

type TimelineMetric struct {
	Date      string `json:"date"`
	Pending   int    `json:"pending"`
	InTransit int    `json:"inTransit"`
	Completed int    `json:"completed"`
}

type TopCarrier struct {
	CarrierID      string  `json:"carrierId"`
	CarrierName    string  `json:"carrierName"`
	TotalShipments int     `json:"totalShipments"`
	SuccessRate    float64 `json:"successRate"` // percent, 0..100
}

type DashboardMetrics struct {
	CarrierPerformance []CarrierPerformance `json:"carrierPerformance"`
	TimelineMetrics    []TimelineMetric     `json:"timelineMetrics"`
	TopCarriers        []TopCarrier         `json:"topCarriers"`
}
