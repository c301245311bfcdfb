package cache

import (
	"context"
	"time"
)

// Cache хранит JSON-сериализуемые значения с TTL.
type Cache interface {
	// Get декодирует значение в dst. false без ошибки означает промах.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// NopCache используется, когда REDIS_URL не задан: всегда промах.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (NopCache) Set(context.Context, string, any, time.Duration) error { return nil }
