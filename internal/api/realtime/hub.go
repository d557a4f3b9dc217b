// Package realtime is the websocket push server. Each socket authenticates on
// upgrade, then registers for its user's history channel and optionally
// subscribes to the generic notification channel.
package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/api/metrics"
	"github.com/99minutos/shipment-tracker/internal/api/presenter"
	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

const (
	writeTimeout = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 64 << 10

	eventError = "error"
)

// Principal is the authenticated identity behind a socket.
type Principal struct {
	UserID string
	Role   string
}

// Hub tracks live sockets on this instance and routes push jobs to them.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*client
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

type client struct {
	id        string
	principal Principal
	ws        *websocket.Conn
	writeMu   sync.Mutex

	stateMu    sync.RWMutex
	registered bool
	subscribed bool
}

// NewHub builds a Hub. An empty origin list, or one containing "*", accepts
// any Origin header.
func NewHub(allowedOrigins []string, log zerolog.Logger) *Hub {
	h := &Hub{
		conns: make(map[string]*client),
		log:   log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Serve upgrades the request and blocks until the socket closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, p Principal) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{id: uuid.NewString(), principal: p, ws: ws}

	h.add(c)
	defer h.remove(c)

	log := h.log.With().Str("conn_id", c.id).Str("user_id", p.UserID).Logger()
	log.Info().Msg("realtime connection opened")

	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(c, done)

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("realtime connection closed unexpectedly")
			} else {
				log.Info().Msg("realtime connection closed")
			}
			return nil
		}
		h.handleFrame(c, payload, log)
	}
}

func (h *Hub) handleFrame(c *client, payload []byte, log zerolog.Logger) {
	var f wire.Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		h.writeError(c, "malformed frame")
		return
	}

	switch f.Event {
	case wire.EventRegister:
		var userID string
		if err := json.Unmarshal(f.Data, &userID); err != nil || userID == "" {
			h.writeError(c, "register requires a user id")
			return
		}
		if userID != c.principal.UserID {
			log.Warn().Str("requested", userID).Msg("register for foreign user rejected")
			h.writeError(c, "cannot register for another user")
			return
		}
		c.setRegistered(true)
		log.Debug().Msg("registered for history events")
	case wire.EventSubscribe:
		c.setSubscribed(true)
	case wire.EventUnsubscribe:
		c.setSubscribed(false)
	default:
		h.writeError(c, "unknown event")
	}
}

// Deliver fans a push job out to the sockets on this instance: the history
// frame to the owner's registered sockets, the notification to subscribed
// sockets of the owner and of administrators.
func (h *Hub) Deliver(job domain.PushJob) {
	var historyFrame, messageFrame []byte
	if job.History != nil {
		historyFrame = h.encode(wire.HistoryEvent(job.OwnerID), presenter.History(job.History))
	}
	if job.Notification != nil {
		messageFrame = h.encode(wire.EventMessage, presenter.Notification(job.Notification))
	}

	for _, c := range h.snapshot() {
		registered, subscribed := c.state()
		if historyFrame != nil && registered && c.principal.UserID == job.OwnerID {
			if h.write(c, historyFrame) {
				metrics.RealtimeFramesSentTotal.WithLabelValues("history").Inc()
			}
		}
		if messageFrame != nil && subscribed && (c.principal.UserID == job.OwnerID || c.principal.Role == domain.RoleAdmin) {
			if h.write(c, messageFrame) {
				metrics.RealtimeFramesSentTotal.WithLabelValues("message").Inc()
			}
		}
	}
}

// Count reports the number of open sockets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close drops every socket. Serve calls return as their reads fail.
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(writeTimeout))
		c.writeMu.Unlock()
		_ = c.ws.Close()
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	metrics.RealtimeConnections.Inc()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()
	_ = c.ws.Close()
	metrics.RealtimeConnections.Dec()
}

func (h *Hub) snapshot() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.conns))
	for _, c := range h.conns {
		out = append(out, c)
	}
	return out
}

func (h *Hub) pingLoop(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				// Unblocks the reader in Serve.
				_ = c.ws.Close()
				return
			}
		}
	}
}

func (h *Hub) encode(event string, v any) []byte {
	f, err := wire.NewFrame(event, v)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return nil
	}
	return raw
}

func (h *Hub) write(c *client, raw []byte) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
		if !errors.Is(err, websocket.ErrCloseSent) {
			h.log.Debug().Err(err).Str("conn_id", c.id).Msg("realtime write failed")
		}
		return false
	}
	return true
}

func (h *Hub) writeError(c *client, msg string) {
	if raw := h.encode(eventError, msg); raw != nil {
		h.write(c, raw)
	}
}

func (c *client) setRegistered(v bool) {
	c.stateMu.Lock()
	c.registered = v
	c.stateMu.Unlock()
}

func (c *client) setSubscribed(v bool) {
	c.stateMu.Lock()
	c.subscribed = v
	c.stateMu.Unlock()
}

func (c *client) state() (registered, subscribed bool) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.registered, c.subscribed
}
