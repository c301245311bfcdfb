package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/signaling"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub        *signaling.Hub
	upgrader   websocket.Upgrader
	sendBuffer int
}

// NewWebSocketHandler: allowedOrigins берётся из того же списка, что и для CORS; "*" разрешает всё.
func NewWebSocketHandler(hub *signaling.Hub, allowedOrigins []string, sendBuffer int) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		sendBuffer: sendBuffer,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// не браузер
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWs godoc
// @Summary      Open a relay socket
// @Description  Upgrades to WebSocket. Browsers pass the JWT as ?token=. Frames are JSON envelopes {type, room, to, from, payload}.
// @Tags         relay
// @Param        token  query  string  false  "JWT when the Authorization header cannot be set"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	identity := signaling.Identity{
		UserID: userID,
		Name:   middleware.GetUserNameFromContext(r.Context()),
		Role:   role,
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		slog.WarnContext(r.Context(), "websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := signaling.NewClient(h.hub, conn, identity, h.sendBuffer)
	if err := h.hub.Register(r.Context(), client); err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
