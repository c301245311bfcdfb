package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound        = errors.New("requested resource not found")
	ErrMessageNotFound = errors.New("chat message not found")
	ErrPlayerNotFound  = errors.New("player not found")

	// Ошибки валидации
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidRoom      = errors.New("room name must be 1-64 characters of letters, digits, ':', '_', '.', '-'")
	ErrMessageEmpty     = errors.New("message text is empty")
	ErrMessageTooLong   = errors.New("message text is too long")
	ErrInvalidRegion    = errors.New("unsupported region")
	ErrInvalidRiotID    = errors.New("invalid riot id")
	ErrInvalidCursor    = errors.New("invalid pagination cursor")

	// Состояние
	ErrRoomEmpty = errors.New("room has no messages")

	// Внешние зависимости
	ErrArchiveUnavailable = errors.New("chat archive storage is not configured")
	ErrStatsRateLimited   = errors.New("stats provider rate limit exceeded, try again later")
	ErrStatsUnavailable   = errors.New("stats provider is unavailable")
)
