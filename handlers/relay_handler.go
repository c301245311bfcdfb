package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/signaling"
	"github.com/go-chi/chi/v5"
)

// RelayDirectory отдаёт текущее состояние комнат хаба.
type RelayDirectory interface {
	RoomMembers(ctx context.Context, room string) ([]models.RoomMember, error)
	LiveStreams(ctx context.Context) ([]models.LiveStream, error)
}

type RelayHandler struct {
	relay RelayDirectory
}

func NewRelayHandler(relay RelayDirectory) *RelayHandler {
	return &RelayHandler{relay: relay}
}

// Members godoc
// @Summary      Sockets currently in a room
// @Tags         relay
// @Produce      json
// @Param        room  path  string  true  "Room name"
// @Success      200  {object}  map[string]interface{}  "room and members"
// @Security     BearerAuth
// @Router       /rooms/{room}/members [get]
func (h *RelayHandler) Members(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if !signaling.ValidRoomName(room) {
		badRequestResponse(w, r, services.ErrInvalidRoom)
		return
	}
	members, err := h.relay.RoomMembers(r.Context(), room)
	if err != nil {
		h.relayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"room": room, "members": members}, nil)
}

// LiveStreams godoc
// @Summary      Live streams across all rooms
// @Tags         relay
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "streams"
// @Security     BearerAuth
// @Router       /streams [get]
func (h *RelayHandler) LiveStreams(w http.ResponseWriter, r *http.Request) {
	streams, err := h.relay.LiveStreams(r.Context())
	if err != nil {
		h.relayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"streams": streams}, nil)
}

func (h *RelayHandler) relayError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, signaling.ErrHubClosed) {
		serviceUnavailableResponse(w, r, err.Error())
		return
	}
	serverErrorResponse(w, r, err)
}
