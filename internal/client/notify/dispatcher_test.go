package notify

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/client/realtime"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

type stubToaster struct {
	mu    sync.Mutex
	shown []string
}

func (s *stubToaster) add(v string) {
	s.mu.Lock()
	s.shown = append(s.shown, v)
	s.mu.Unlock()
}

func (s *stubToaster) Success(msg string) { s.add("success:" + msg) }
func (s *stubToaster) Info(msg string)    { s.add("info:" + msg) }
func (s *stubToaster) Error(msg string)   { s.add("error:" + msg) }

// stubChannel records control frames and lets tests flip the connected flag.
type stubChannel struct {
	connected bool
	sent      []string
	listener  realtime.MessageListener
	subs      []func(bool)
}

func (s *stubChannel) Connected() bool { return s.connected }

func (s *stubChannel) Subscribe(fn func(bool)) func() {
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	return func() { s.subs[idx] = nil }
}

func (s *stubChannel) OnMessage(fn realtime.MessageListener) func() {
	s.listener = fn
	return func() { s.listener = nil }
}

func (s *stubChannel) Send(f wire.Frame) error {
	s.sent = append(s.sent, f.Event)
	return nil
}

func (s *stubChannel) set(v bool) {
	s.connected = v
	for _, fn := range s.subs {
		if fn != nil {
			fn(v)
		}
	}
}

func payload(t *testing.T, typ, msg string) []byte {
	t.Helper()
	raw, err := json.Marshal(wire.Notification{Type: typ, Message: msg})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestClassify(t *testing.T) {
	cases := []struct {
		typ  string
		want Severity
		ok   bool
	}{
		{wire.NotificationStatusUpdated, SeverityInfo, true},
		{wire.NotificationNewShipment, SeveritySuccess, true},
		{wire.NotificationShipmentDeleted, SeverityError, true},
		{"something_else", "", false},
	}
	for _, tc := range cases {
		got, ok := Classify(wire.Notification{Type: tc.typ})
		if got != tc.want || ok != tc.ok {
			t.Errorf("Classify(%q) = %q, %v; want %q, %v", tc.typ, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHandle_ShowsToastPerSeverity(t *testing.T) {
	toaster := &stubToaster{}
	d := New(&stubChannel{}, toaster, zerolog.Nop())

	d.Handle(payload(t, wire.NotificationStatusUpdated, "moved"))
	d.Handle(payload(t, wire.NotificationNewShipment, "created"))
	d.Handle(payload(t, wire.NotificationShipmentDeleted, "gone"))

	want := []string{"info:moved", "success:created", "error:gone"}
	if len(toaster.shown) != len(want) {
		t.Fatalf("expected %v, got %v", want, toaster.shown)
	}
	for i := range want {
		if toaster.shown[i] != want[i] {
			t.Errorf("toast %d: expected %q, got %q", i, want[i], toaster.shown[i])
		}
	}
}

func TestHandle_DropsBadPayloads(t *testing.T) {
	toaster := &stubToaster{}
	d := New(&stubChannel{}, toaster, zerolog.Nop())

	d.Handle([]byte("{not json"))
	d.Handle(payload(t, "unknown", "x"))
	d.Handle(nil)

	if len(toaster.shown) != 0 {
		t.Fatalf("expected no toasts, got %v", toaster.shown)
	}
}

func TestAttach_SubscribesOnlyWhileConnected(t *testing.T) {
	ch := &stubChannel{}
	toaster := &stubToaster{}
	d := New(ch, toaster, zerolog.Nop())

	d.Attach()
	if len(ch.sent) != 0 || ch.listener != nil {
		t.Fatalf("expected nothing while disconnected, sent=%v", ch.sent)
	}

	ch.set(true)
	if len(ch.sent) != 1 || ch.sent[0] != wire.EventSubscribe {
		t.Fatalf("expected subscribe frame, got %v", ch.sent)
	}
	if ch.listener == nil {
		t.Fatal("expected message listener registered")
	}
	ch.listener(payload(t, wire.NotificationNewShipment, "hello"))
	if len(toaster.shown) != 1 {
		t.Fatalf("expected toast via listener, got %v", toaster.shown)
	}

	// Dropping the connection removes the listener without sending.
	ch.set(false)
	if ch.listener != nil {
		t.Error("expected listener removed on disconnect")
	}
	if len(ch.sent) != 1 {
		t.Errorf("expected no unsubscribe on a dead channel, got %v", ch.sent)
	}

	ch.set(true)
	if len(ch.sent) != 2 || ch.sent[1] != wire.EventSubscribe {
		t.Fatalf("expected resubscribe after reconnect, got %v", ch.sent)
	}
}

func TestDetach_Unsubscribes(t *testing.T) {
	ch := &stubChannel{connected: true}
	d := New(ch, &stubToaster{}, zerolog.Nop())

	d.Attach()
	d.Attach()
	if len(ch.sent) != 1 {
		t.Fatalf("expected a single subscribe, got %v", ch.sent)
	}

	d.Detach()
	if len(ch.sent) != 2 || ch.sent[1] != wire.EventUnsubscribe {
		t.Fatalf("expected unsubscribe frame, got %v", ch.sent)
	}
	if ch.listener != nil {
		t.Error("expected listener removed")
	}

	ch.set(false)
	ch.set(true)
	if len(ch.sent) != 2 {
		t.Errorf("expected detached dispatcher to ignore reconnects, got %v", ch.sent)
	}
}
