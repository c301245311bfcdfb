package models

type DashboardStats struct {
	Connections       int   `json:"connections"`
	Rooms             int   `json:"rooms"`
	LiveStreams       int   `json:"live_streams"`
	StreamViewers     int   `json:"stream_viewers"`
	VoiceParticipants int   `json:"voice_participants"`
	MessagesTotal     int64 `json:"messages_total"`
	MessagesLast24h   int64 `json:"messages_last_24h"`
}
