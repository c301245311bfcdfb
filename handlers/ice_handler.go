package handlers

import (
	"net/http"

	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/services"
)

type ICEHandler struct {
	iceService services.ICEService
}

func NewICEHandler(iceService services.ICEService) *ICEHandler {
	return &ICEHandler{iceService: iceService}
}

// ICEServers godoc
// @Summary      ICE servers for RTCPeerConnection
// @Description  STUN entries plus time-limited TURN credentials when TURN is configured.
// @Tags         webrtc
// @Produce      json
// @Success      200  {object}  models.ICEConfig
// @Security     BearerAuth
// @Router       /webrtc/ice-servers [get]
func (h *ICEHandler) ICEServers(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.iceService.Config(userID), nil)
}
