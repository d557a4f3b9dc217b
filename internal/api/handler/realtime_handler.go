package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/realtime"
)

// SocketServer upgrades and serves one realtime connection.
type SocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, p realtime.Principal) error
}

// RealtimeHandler hands authenticated upgrade requests to the hub.
type RealtimeHandler struct {
	hub SocketServer
}

func NewRealtimeHandler(hub SocketServer) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect handles GET /ws. Blocks for the lifetime of the socket.
func (h *RealtimeHandler) Connect(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	// The upgrader writes its own HTTP error on failure.
	_ = h.hub.Serve(c.Response(), c.Request(), realtime.Principal{UserID: actor.UserID, Role: actor.Role})
	return nil
}
