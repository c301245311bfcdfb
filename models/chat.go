package models

import "time"

// ChatMessage хранится в chat_messages.
type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	Room      string    `json:"room" db:"room"`
	UserID    int       `json:"user_id" db:"user_id"`
	Nickname  string    `json:"nickname" db:"nickname"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatHistory: одна страница истории комнаты, новые сообщения первыми.
type ChatHistory struct {
	Room     string        `json:"room"`
	Messages []ChatMessage `json:"messages"`
	// NextBefore: курсор следующей (более старой) страницы, nil если история закончилась.
	NextBefore *int64 `json:"next_before,omitempty"`
}

type ChatArchive struct {
	Room     string    `json:"room"`
	Key      string    `json:"key"`
	URL      string    `json:"url"`
	Messages int       `json:"messages"`
	Bytes    int       `json:"bytes"`
	Created  time.Time `json:"created_at"`
}
