package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/pkg/wire"
)

type recordingToaster struct {
	mu    sync.Mutex
	toast []string
}

func (r *recordingToaster) add(kind, msg string) {
	r.mu.Lock()
	r.toast = append(r.toast, kind+":"+msg)
	r.mu.Unlock()
}

func (r *recordingToaster) Success(msg string) { r.add("success", msg) }
func (r *recordingToaster) Info(msg string)    { r.add("info", msg) }
func (r *recordingToaster) Error(msg string)   { r.add("error", msg) }

func (r *recordingToaster) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.toast...)
}

// pushServer accepts sockets and hands each one to the test.
type pushServer struct {
	srv   *httptest.Server
	conns chan *websocket.Conn
	auth  chan string
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{conns: make(chan *websocket.Conn, 4), auth: make(chan string, 4)}
	upgrader := websocket.Upgrader{}
	ps.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.auth <- r.Header.Get("Authorization")
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ps.conns <- ws
	}))
	t.Cleanup(ps.srv.Close)
	return ps
}

func (ps *pushServer) url() string {
	return "ws" + strings.TrimPrefix(ps.srv.URL, "http")
}

func (ps *pushServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case ws := <-ps.conns:
		t.Cleanup(func() { _ = ws.Close() })
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func readFrame(t *testing.T, ws *websocket.Conn) wire.Frame {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f wire.Frame
	if err := ws.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func push(t *testing.T, ws *websocket.Conn, event string, v any) {
	t.Helper()
	f, err := wire.NewFrame(event, v)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := ws.WriteJSON(f); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func connect(t *testing.T) (*Client, *websocket.Conn, *recordingToaster) {
	t.Helper()
	ps := newPushServer(t)
	toaster := &recordingToaster{}
	c := New(ps.url(), toaster, zerolog.Nop())
	t.Cleanup(c.Close)

	if err := c.SetCredentials(context.Background(), "tkn", "user-1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if got := <-ps.auth; got != "Bearer tkn" {
		t.Fatalf("unexpected authorization %q", got)
	}
	ws := ps.accept(t)
	return c, ws, toaster
}

func TestClient_ConnectRegistersUser(t *testing.T) {
	c, ws, toaster := connect(t)

	f := readFrame(t, ws)
	if f.Event != wire.EventRegister || string(f.Data) != `"user-1"` {
		t.Fatalf("unexpected first frame %s %s", f.Event, f.Data)
	}
	if !c.Connected() {
		t.Error("expected connected")
	}
	if got := toaster.all(); len(got) != 1 || !strings.HasPrefix(got[0], "success:") {
		t.Errorf("unexpected toasts %v", got)
	}
}

func TestClient_HistoryListenerIsSingleSlot(t *testing.T) {
	c, ws, _ := connect(t)
	readFrame(t, ws)

	var mu sync.Mutex
	var calls []string
	fired := make(chan struct{}, 2)
	c.OnHistoryUpdate(func(wire.History) {
		mu.Lock()
		calls = append(calls, "A")
		mu.Unlock()
		fired <- struct{}{}
	})
	c.OnHistoryUpdate(func(h wire.History) {
		mu.Lock()
		calls = append(calls, "B:"+h.ShipmentID)
		mu.Unlock()
		fired <- struct{}{}
	})

	push(t, ws, wire.HistoryEvent("someone-else"), wire.History{ShipmentID: "ignored"})
	push(t, ws, wire.HistoryEvent("user-1"), wire.History{ShipmentID: "shp-1"})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("listener not fired")
	}
	// Let any stray delivery land before asserting.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != "B:shp-1" {
		t.Fatalf("expected only B to fire once, got %v", calls)
	}
}

func TestClient_MessageListenerDetach(t *testing.T) {
	c, ws, _ := connect(t)
	readFrame(t, ws)

	got := make(chan string, 4)
	detach := c.OnMessage(func(raw []byte) { got <- string(raw) })

	push(t, ws, wire.EventMessage, wire.Notification{Type: wire.NotificationNewShipment, Message: "hi"})
	select {
	case raw := <-got:
		var n wire.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil || n.Message != "hi" {
			t.Fatalf("unexpected payload %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message listener not fired")
	}

	replaced := make(chan struct{}, 1)
	c.OnMessage(func([]byte) { replaced <- struct{}{} })
	detach()

	push(t, ws, wire.EventMessage, wire.Notification{Type: wire.NotificationNewShipment, Message: "again"})
	select {
	case <-replaced:
	case <-time.After(2 * time.Second):
		t.Fatal("stale detach removed the newer listener")
	}
}

func TestClient_SendControlFrame(t *testing.T) {
	c, ws, _ := connect(t)
	readFrame(t, ws)

	f, _ := wire.NewFrame(wire.EventSubscribe, nil)
	if err := c.Send(f); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := readFrame(t, ws); got.Event != wire.EventSubscribe {
		t.Fatalf("unexpected frame %+v", got)
	}
}

func TestClient_ServerCloseFlipsConnected(t *testing.T) {
	c, ws, _ := connect(t)
	readFrame(t, ws)

	changes := make(chan bool, 2)
	unsubscribe := c.Subscribe(func(v bool) { changes <- v })
	defer unsubscribe()

	_ = ws.Close()

	select {
	case v := <-changes:
		if v {
			t.Fatal("expected disconnected notification")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no disconnect notification")
	}
	if c.Connected() {
		t.Error("expected Connected() false")
	}
}

func TestClient_DialFailure(t *testing.T) {
	toaster := &recordingToaster{}
	c := New("ws://127.0.0.1:1/ws", toaster, zerolog.Nop())
	defer c.Close()

	if err := c.SetCredentials(context.Background(), "tkn", "user-1"); err == nil {
		t.Fatal("expected dial error")
	}
	if c.Connected() {
		t.Error("expected disconnected")
	}
	if got := toaster.all(); len(got) != 1 || !strings.HasPrefix(got[0], "error:") {
		t.Errorf("expected an error toast, got %v", got)
	}
	if err := c.Send(wire.Frame{Event: wire.EventSubscribe}); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestClient_CredentialChangeReconnects(t *testing.T) {
	ps := newPushServer(t)
	c := New(ps.url(), &recordingToaster{}, zerolog.Nop())
	defer c.Close()

	if err := c.SetCredentials(context.Background(), "t1", "user-1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	<-ps.auth
	first := ps.accept(t)
	readFrame(t, first)

	// Same credentials keep the live connection.
	if err := c.SetCredentials(context.Background(), "t1", "user-1"); err != nil {
		t.Fatalf("noop: %v", err)
	}
	select {
	case <-ps.auth:
		t.Fatal("unexpected reconnect for unchanged credentials")
	default:
	}

	if err := c.SetCredentials(context.Background(), "t2", "user-2"); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if got := <-ps.auth; got != "Bearer t2" {
		t.Fatalf("unexpected authorization %q", got)
	}
	second := ps.accept(t)
	if f := readFrame(t, second); string(f.Data) != `"user-2"` {
		t.Fatalf("unexpected register %s", f.Data)
	}

	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatal("expected old connection closed")
	}

	if err := c.SetCredentials(context.Background(), "", ""); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.Connected() {
		t.Error("expected logout to disconnect")
	}
}
