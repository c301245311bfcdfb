package models

import "time"

// LiveStream описывает активную трансляцию в комнате: один хост, много зрителей.
type LiveStream struct {
	Room         string    `json:"room"`
	HostSocketID string    `json:"host_socket_id"`
	HostUserID   int       `json:"host_user_id"`
	HostName     string    `json:"host_name"`
	Viewers      int       `json:"viewers"`
	StartedAt    time.Time `json:"started_at"`
}

// RoomMember описывает сокет, подключенный к комнате.
type RoomMember struct {
	SocketID string `json:"socket_id"`
	UserID   int    `json:"user_id"`
	Name     string `json:"name"`
	InVoice  bool   `json:"in_voice"`
}
