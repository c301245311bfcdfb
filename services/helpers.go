package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/esports-arena/gamestats"
	"github.com/Dosada05/esports-arena/repositories"
)

// handleRepositoryError переводит ошибки репозитория в ошибки сервисного слоя.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMessageNotFound):
		return ErrMessageNotFound
	case errors.Is(err, repositories.ErrValueTooLong):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	default:
		return fmt.Errorf("repository error: %w", err)
	}
}

// handleUpstreamError переводит ошибки gamestats в ошибки сервисного слоя.
func handleUpstreamError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gamestats.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrPlayerNotFound, err)
	case errors.Is(err, gamestats.ErrRateLimited):
		return fmt.Errorf("%w: %w", ErrStatsRateLimited, err)
	default:
		return fmt.Errorf("%w: %w", ErrStatsUnavailable, err)
	}
}

func playerCacheKey(region, name, tag string) string {
	return "stats:valorant:" + region + ":" + strings.ToLower(name) + "#" + strings.ToLower(tag)
}
