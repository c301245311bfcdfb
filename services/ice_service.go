package services

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/pion/webrtc/v4"
)

type ICEService interface {
	Config(userID int) models.ICEConfig
}

type ICEServiceConfig struct {
	STUNURLs      []string
	TURNURLs      []string
	TURNSecret    string
	CredentialTTL time.Duration
}

type iceService struct {
	cfg ICEServiceConfig
	now func() time.Time
}

func NewICEService(cfg ICEServiceConfig) ICEService {
	if cfg.CredentialTTL <= 0 {
		cfg.CredentialTTL = 12 * time.Hour
	}
	return &iceService{cfg: cfg, now: time.Now}
}

// Config выдаёт STUN и, если настроен TURN, временные учётные данные
// по схеме coturn REST API (use-auth-secret).
func (s *iceService) Config(userID int) models.ICEConfig {
	out := models.ICEConfig{ICEServers: []webrtc.ICEServer{}}
	if len(s.cfg.STUNURLs) > 0 {
		out.ICEServers = append(out.ICEServers, webrtc.ICEServer{URLs: s.cfg.STUNURLs})
	}
	if len(s.cfg.TURNURLs) == 0 || s.cfg.TURNSecret == "" {
		return out
	}

	expires := s.now().Add(s.cfg.CredentialTTL).UTC().Truncate(time.Second)
	username := fmt.Sprintf("%d:%d", expires.Unix(), userID)
	out.ICEServers = append(out.ICEServers, webrtc.ICEServer{
		URLs:       s.cfg.TURNURLs,
		Username:   username,
		Credential: turnCredential(s.cfg.TURNSecret, username),
	})
	out.ExpiresAt = &expires
	return out
}

func turnCredential(secret, username string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(username))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
