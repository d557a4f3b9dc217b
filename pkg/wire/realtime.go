package wire

import "encoding/json"

// Realtime event names.
const (
	EventRegister    = "register"
	EventSubscribe   = "subscribe_notifications"
	EventUnsubscribe = "unsubscribe_notifications"
	EventMessage     = "message"

	historyEventPrefix = "history-created-"
)

// Notification types carried on the message channel.
const (
	NotificationStatusUpdated   = "shipment_status_updated"
	NotificationNewShipment     = "new_shipment"
	NotificationShipmentDeleted = "shipment_deleted"
)

// Frame is one websocket text message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame encodes v as the frame payload.
func NewFrame(event string, v any) (Frame, error) {
	if v == nil {
		return Frame{Event: event}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: raw}, nil
}

// HistoryEvent names the per-user channel history pushes are sent on.
func HistoryEvent(userID string) string {
	return historyEventPrefix + userID
}

// Notification is the payload of a message frame.
type Notification struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Data    *NotificationData `json:"data,omitempty"`
}

type NotificationData struct {
	Shipment   *Shipment `json:"shipment,omitempty"`
	ShipmentID string    `json:"shipmentId,omitempty"`
	NewStatus  string    `json:"newStatus,omitempty"`
}
