package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/esports-arena/cache"
	"github.com/Dosada05/esports-arena/gamestats"
	"github.com/Dosada05/esports-arena/models"
	"golang.org/x/sync/errgroup"
)

const recentMatchesCount = 5

// Имена источников в PlayerStats.Sources.
const (
	SourceHenrikAccount = "henrik_account"
	SourceHenrikMMR     = "henrik_mmr"
	SourceHenrikMatches = "henrik_matches"
	SourceRiotAccount   = "riot_account"
)

var validRegions = map[string]bool{"na": true, "eu": true, "ap": true, "kr": true, "latam": true, "br": true}

type HenrikAPI interface {
	Account(ctx context.Context, name, tag string) (*models.PlayerAccount, error)
	MMR(ctx context.Context, region, name, tag string) (*models.PlayerMMR, error)
	Matches(ctx context.Context, region, name, tag string, size int) ([]models.MatchSummary, error)
}

type RiotAPI interface {
	AccountByRiotID(ctx context.Context, name, tag string) (*gamestats.RiotAccount, error)
}

type StatsService interface {
	PlayerStats(ctx context.Context, region, name, tag string) (*models.PlayerStats, error)
}

type statsService struct {
	henrik HenrikAPI
	riot   RiotAPI
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService: riot может быть nil (RIOT_API_KEY не задан), вместо nil-кэша используется cache.NopCache{}.
func NewStatsService(henrik HenrikAPI, riot RiotAPI, c cache.Cache, ttl time.Duration, logger *slog.Logger) StatsService {
	if c == nil {
		c = cache.NopCache{}
	}
	return &statsService{
		henrik: henrik,
		riot:   riot,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func validateRiotID(region, name, tag string) error {
	if !validRegions[region] {
		return fmt.Errorf("%w: %q (expected one of na, eu, ap, kr, latam, br)", ErrInvalidRegion, region)
	}
	if n := utf8.RuneCountInString(name); n < 3 || n > 16 {
		return fmt.Errorf("%w: name must be 3-16 characters", ErrInvalidRiotID)
	}
	if n := utf8.RuneCountInString(tag); n < 3 || n > 5 {
		return fmt.Errorf("%w: tag must be 3-5 characters", ErrInvalidRiotID)
	}
	return nil
}

// PlayerStats собирает аккаунт, MMR и последние матчи игрока параллельно.
// Без аккаунта ответа нет; сбой остальных разделов отражается в Sources.
func (s *statsService) PlayerStats(ctx context.Context, region, name, tag string) (*models.PlayerStats, error) {
	region = strings.ToLower(strings.TrimSpace(region))
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if err := validateRiotID(region, name, tag); err != nil {
		return nil, err
	}

	key := playerCacheKey(region, name, tag)
	var cached models.PlayerStats
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("stats cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	stats := &models.PlayerStats{
		Region:        region,
		RecentMatches: []models.MatchSummary{},
		Sources:       make(map[string]models.SourceStatus),
	}
	var mu sync.Mutex
	record := func(source string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			stats.Sources[source] = models.SourceStatus{Error: err.Error()}
			return
		}
		stats.Sources[source] = models.SourceStatus{OK: true}
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		acc, err := s.henrik.Account(gCtx, name, tag)
		record(SourceHenrikAccount, err)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.Account = *acc
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		mmr, err := s.henrik.MMR(gCtx, region, name, tag)
		record(SourceHenrikMMR, err)
		if err == nil {
			mu.Lock()
			stats.MMR = mmr
			mu.Unlock()
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.henrik.Matches(gCtx, region, name, tag, recentMatchesCount)
		record(SourceHenrikMatches, err)
		if err == nil {
			mu.Lock()
			stats.RecentMatches = matches
			mu.Unlock()
		}
		return nil
	})

	if s.riot != nil {
		g.Go(func() error {
			acc, err := s.riot.AccountByRiotID(gCtx, name, tag)
			record(SourceRiotAccount, err)
			if err == nil {
				mu.Lock()
				stats.RiotPUUID = acc.PUUID
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, handleUpstreamError(err)
	}
	stats.FetchedAt = s.now().UTC()

	// Неполный ответ не кэшируем, чтобы временный сбой источника не держался TTL.
	if complete(stats.Sources) && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", "key", key, "error", err)
		}
	}
	return stats, nil
}

func complete(sources map[string]models.SourceStatus) bool {
	for _, st := range sources {
		if !st.OK {
			return false
		}
	}
	return true
}
