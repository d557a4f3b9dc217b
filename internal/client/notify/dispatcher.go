// Package notify turns generic message frames from the push channel into
// user-visible toasts.
package notify

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/client/realtime"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Classify maps a notification type to the severity it is shown with.
func Classify(n wire.Notification) (Severity, bool) {
	switch n.Type {
	case wire.NotificationStatusUpdated:
		return SeverityInfo, true
	case wire.NotificationNewShipment:
		return SeveritySuccess, true
	case wire.NotificationShipmentDeleted:
		return SeverityError, true
	default:
		return "", false
	}
}

// Channel is the part of the realtime client the dispatcher depends on.
type Channel interface {
	Connected() bool
	Subscribe(fn func(connected bool)) (unsubscribe func())
	OnMessage(fn realtime.MessageListener) (detach func())
	Send(f wire.Frame) error
}

// Dispatcher keeps the notification subscription alive for as long as it is
// attached and the channel is connected.
type Dispatcher struct {
	ch      Channel
	toaster realtime.Toaster
	log     zerolog.Logger

	mu          sync.Mutex
	attached    bool
	active      bool
	detachMsg   func()
	unsubscribe func()
}

func New(ch Channel, toaster realtime.Toaster, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{ch: ch, toaster: toaster, log: log}
}

// Handle decodes one message payload and shows it. Anything it cannot make
// sense of is logged and dropped.
func (d *Dispatcher) Handle(raw []byte) {
	var n wire.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		d.log.Warn().Err(err).Msg("dropping malformed notification")
		return
	}

	sev, ok := Classify(n)
	if !ok {
		d.log.Warn().Str("type", n.Type).Msg("unknown notification type")
		return
	}

	switch sev {
	case SeverityInfo:
		d.toaster.Info(n.Message)
	case SeveritySuccess:
		d.toaster.Success(n.Message)
	case SeverityError:
		d.toaster.Error(n.Message)
	}
}

// Attach starts following the channel's connected flag. Whenever it is
// connected the dispatcher is subscribed to notifications.
func (d *Dispatcher) Attach() {
	d.mu.Lock()
	if d.attached {
		d.mu.Unlock()
		return
	}
	d.attached = true
	d.mu.Unlock()

	unsubscribe := d.ch.Subscribe(d.onConnectedChange)

	d.mu.Lock()
	d.unsubscribe = unsubscribe
	d.mu.Unlock()

	if d.ch.Connected() {
		d.onConnectedChange(true)
	}
}

// Detach unsubscribes from notifications and stops following the channel.
func (d *Dispatcher) Detach() {
	d.mu.Lock()
	if !d.attached {
		d.mu.Unlock()
		return
	}
	d.attached = false
	unsubscribe := d.unsubscribe
	d.unsubscribe = nil
	d.stopLocked()
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (d *Dispatcher) onConnectedChange(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.attached {
		return
	}
	if connected {
		d.startLocked()
		return
	}
	d.stopLocked()
}

func (d *Dispatcher) startLocked() {
	if d.active {
		return
	}
	f, _ := wire.NewFrame(wire.EventSubscribe, nil)
	if err := d.ch.Send(f); err != nil {
		d.log.Warn().Err(err).Msg("subscribe to notifications failed")
		return
	}
	d.detachMsg = d.ch.OnMessage(d.Handle)
	d.active = true
	d.log.Debug().Msg("subscribed to notifications")
}

func (d *Dispatcher) stopLocked() {
	if !d.active {
		return
	}
	d.active = false
	if d.detachMsg != nil {
		d.detachMsg()
		d.detachMsg = nil
	}
	if !d.ch.Connected() {
		return
	}
	f, _ := wire.NewFrame(wire.EventUnsubscribe, nil)
	if err := d.ch.Send(f); err != nil {
		d.log.Warn().Err(err).Msg("unsubscribe from notifications failed")
	}
}
