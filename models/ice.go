package models

import (
	"time"

	"github.com/pion/webrtc/v4"
)

// ICEConfig отдается браузеру как RTCConfiguration.iceServers.
type ICEConfig struct {
	ICEServers []webrtc.ICEServer `json:"ice_servers"`
	ExpiresAt  *time.Time         `json:"expires_at,omitempty"`
}
