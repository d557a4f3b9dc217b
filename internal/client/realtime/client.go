// Package realtime is the client side of the push channel: one websocket per
// session, registered for the user's history events, with a single listener
// slot per named channel.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/pkg/wire"
)

const writeTimeout = 5 * time.Second

// ErrNotConnected is returned by Send when no connection is open.
var ErrNotConnected = errors.New("realtime: not connected")

// Toaster shows transient user-visible notifications.
type Toaster interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// HistoryListener receives history-created events for the session user.
type HistoryListener func(wire.History)

// MessageListener receives the raw payload of generic message frames.
type MessageListener func(raw []byte)

// Client owns at most one live connection. Listeners are invoked on the
// reader goroutine and must not call SetCredentials or Close synchronously.
type Client struct {
	url     string
	dialer  *websocket.Dialer
	toaster Toaster
	log     zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	token  string
	userID string
	done   chan struct{}
	gen    atomic.Uint64

	writeMu   sync.Mutex
	live      atomic.Pointer[websocket.Conn]
	connected atomic.Bool

	listenerMu sync.RWMutex
	history    HistoryListener
	message    MessageListener
	messageGen uint64

	subsMu  sync.Mutex
	subs    map[int]func(bool)
	nextSub int
}

type Option func(*Client)

// WithDialer replaces the default websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func New(url string, toaster Toaster, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		url:     url,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		toaster: toaster,
		log:     log,
		subs:    make(map[int]func(bool)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredentials (re)establishes the session connection. Unchanged
// credentials with a live connection are a no-op; empty credentials tear the
// connection down.
func (c *Client) SetCredentials(ctx context.Context, token, userID string) error {
	c.mu.Lock()
	if c.conn != nil && c.connected.Load() && token == c.token && userID == c.userID {
		c.mu.Unlock()
		return nil
	}
	c.teardownLocked()
	c.token, c.userID = token, userID
	if token == "" || userID == "" {
		c.mu.Unlock()
		c.setConnected(false)
		return nil
	}

	err := c.connectLocked(ctx)
	c.mu.Unlock()

	if err != nil {
		c.setConnected(false)
		c.log.Error().Err(err).Str("url", c.url).Msg("realtime connection failed")
		c.toaster.Error("Notification connection error")
		return err
	}
	c.setConnected(true)
	c.toaster.Success("Connected to notification server")
	return nil
}

func (c *Client) connectLocked(ctx context.Context) error {
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+c.token)

	ws, resp, err := c.dialer.DialContext(ctx, c.url, hdr)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}

	register, err := wire.NewFrame(wire.EventRegister, c.userID)
	if err != nil {
		_ = ws.Close()
		return err
	}
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(register); err != nil {
		_ = ws.Close()
		return err
	}

	gen := c.gen.Add(1)
	done := make(chan struct{})
	c.conn, c.done = ws, done
	c.live.Store(ws)
	go c.readLoop(ws, gen, c.userID, done)
	c.log.Info().Str("user_id", c.userID).Msg("realtime connected")
	return nil
}

// teardownLocked closes the current connection and waits for its reader.
func (c *Client) teardownLocked() {
	if c.conn == nil {
		return
	}
	c.gen.Add(1)
	c.live.Store(nil)
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	c.writeMu.Unlock()
	_ = c.conn.Close()
	<-c.done
	c.conn, c.done = nil, nil
}

func (c *Client) readLoop(ws *websocket.Conn, gen uint64, userID string, done chan struct{}) {
	defer close(done)
	historyEvent := wire.HistoryEvent(userID)

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if c.gen.Load() == gen {
				c.log.Warn().Err(err).Msg("realtime disconnected")
				c.setConnected(false)
			}
			return
		}

		var f wire.Frame
		if err := json.Unmarshal(payload, &f); err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}

		switch f.Event {
		case historyEvent:
			var h wire.History
			if err := json.Unmarshal(f.Data, &h); err != nil {
				c.log.Warn().Err(err).Msg("dropping malformed history event")
				continue
			}
			c.listenerMu.RLock()
			fn := c.history
			c.listenerMu.RUnlock()
			if fn != nil {
				fn(h)
			}
		case wire.EventMessage:
			c.listenerMu.RLock()
			fn := c.message
			c.listenerMu.RUnlock()
			if fn != nil {
				fn(f.Data)
			}
		case "error":
			c.log.Warn().RawJSON("data", f.Data).Msg("realtime server rejected a frame")
		default:
			c.log.Debug().Str("event", f.Event).Msg("ignoring realtime event")
		}
	}
}

// Connected reports whether the session connection is open.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Subscribe calls fn on every change of the connected flag.
func (c *Client) Subscribe(fn func(connected bool)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

func (c *Client) setConnected(v bool) {
	if c.connected.Swap(v) == v {
		return
	}
	c.subsMu.Lock()
	fns := make([]func(bool), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// OnHistoryUpdate installs fn as the only history listener, discarding any
// previous one. nil clears the slot.
func (c *Client) OnHistoryUpdate(fn HistoryListener) {
	c.listenerMu.Lock()
	c.history = fn
	c.listenerMu.Unlock()
}

// OnMessage installs fn as the only message listener. detach clears the slot
// unless another listener replaced fn in the meantime.
func (c *Client) OnMessage(fn MessageListener) (detach func()) {
	c.listenerMu.Lock()
	c.messageGen++
	gen := c.messageGen
	c.message = fn
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		if c.messageGen == gen {
			c.message = nil
		}
		c.listenerMu.Unlock()
	}
}

// Send writes a control frame. It never waits on SetCredentials, so it is
// safe to call from a Subscribe callback.
func (c *Client) Send(f wire.Frame) error {
	ws := c.live.Load()
	if ws == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return ws.WriteJSON(f)
}

// Close tears the connection down and forgets the credentials. No goroutine
// started by the client survives it.
func (c *Client) Close() {
	c.mu.Lock()
	c.teardownLocked()
	c.token, c.userID = "", ""
	c.mu.Unlock()
	c.setConnected(false)
}
