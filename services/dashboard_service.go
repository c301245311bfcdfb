package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
	"github.com/Dosada05/esports-arena/signaling"
)

// RelayStats отдаёт runtime-статистику сокетов (signaling.Hub).
type RelayStats interface {
	Stats(ctx context.Context) (signaling.Stats, error)
}

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	relay       RelayStats
	messageRepo repositories.MessageRepository
	now         func() time.Time
}

func NewDashboardService(relay RelayStats, messageRepo repositories.MessageRepository) DashboardService {
	return &dashboardService{
		relay:       relay,
		messageRepo: messageRepo,
		now:         time.Now,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	relay, err := s.relay.Stats(ctx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to read relay stats: %w", err)
	}
	messagesTotal, err := s.messageRepo.Count(ctx, nil)
	if err != nil {
		return models.DashboardStats{}, handleRepositoryError(err)
	}
	since := s.now().Add(-24 * time.Hour)
	messagesLast24h, err := s.messageRepo.Count(ctx, &since)
	if err != nil {
		return models.DashboardStats{}, handleRepositoryError(err)
	}

	return models.DashboardStats{
		Connections:       relay.Connections,
		Rooms:             relay.Rooms,
		LiveStreams:       relay.LiveStreams,
		StreamViewers:     relay.StreamViewers,
		VoiceParticipants: relay.VoiceParticipants,
		MessagesTotal:     messagesTotal,
		MessagesLast24h:   messagesLast24h,
	}, nil
}
