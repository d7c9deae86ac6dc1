package live

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/famcal/famcal/internal/rest"
	"github.com/famcal/famcal/pkg/user"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	keepAliveInterval = 25 * time.Second
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler accepts websocket upgrades only from allowedOrigins. A "*" entry allows any origin.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Stream godoc
// @Summary Live updates (server-sent events)
// @Description Streams invalidation messages for the signed-in user. Accepts the token as query parameter.
// @Tags Live
// @Produce text/event-stream
// @Param token query string false "Session token"
// @Router /api/live [get]
// @Security BearerAuth
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		rest.WriteError(w, http.StatusInternalServerError, "Streaming unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	client := NewClient(userId)
	h.hub.Register(client)
	defer h.hub.Unregister(client)
	log.Debugf("live client %s connected for user %s over SSE", client.ID, userId)

	if err := writeSSE(w, mustJSON(Message{Type: TypeConnected})); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := writeSSE(w, msg); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// Socket godoc
// @Summary Live updates (websocket)
// @Description Same messages as /api/live over a websocket. Accepts the token as query parameter.
// @Tags Live
// @Param token query string false "Session token"
// @Router /api/live/ws [get]
// @Security BearerAuth
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	client := NewClient(userId)
	h.hub.Register(client)
	defer h.hub.Unregister(client)
	log.Debugf("live client %s connected for user %s over websocket", client.ID, userId)

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	if err := writeSocket(conn, websocket.TextMessage, mustJSON(Message{Type: TypeConnected})); err != nil {
		return
	}

	ping := time.NewTicker(pongWait * 9 / 10)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = writeSocket(conn, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := writeSocket(conn, websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := writeSocket(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// readUntilClosed drains incoming frames so pongs and close frames are processed.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("websocket read error: %v", err)
			}
			return
		}
	}
}

func writeSocket(conn *websocket.Conn, messageType int, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(messageType, data)
}

func writeSSE(w http.ResponseWriter, data []byte) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func mustJSON(msg Message) []byte {
	data, _ := json.Marshal(msg)
	return data
}
