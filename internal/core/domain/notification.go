package domain

// NotificationKind tags a realtime notification.
type NotificationKind string

const (
	NotifyStatusUpdated   NotificationKind = "shipment_status_updated"
	NotifyNewShipment     NotificationKind = "new_shipment"
	NotifyShipmentDeleted NotificationKind = "shipment_deleted"
)

// Notification is an ephemeral push message. It is never persisted.
type Notification struct {
	Kind       NotificationKind
	Message    string
	Shipment   *Shipment
	ShipmentID string
	NewStatus  ShipmentStatus
}

// PushJob is one unit of realtime delivery produced by a write. History is
// set for history-created events addressed to the shipment owner.
type PushJob struct {
	ShipmentID   string
	OwnerID      string
	History      *HistoryEvent
	Notification *Notification
}
