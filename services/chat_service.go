package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
	"github.com/Dosada05/esports-arena/signaling"
	"github.com/Dosada05/esports-arena/storage"
	"github.com/klauspost/compress/zstd"
)

const (
	MaxMessageRunes     = 2000
	MaxNicknameRunes    = 64 // chat_messages.nickname VARCHAR(64)
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	archivePrefix      = "chat-archives"
	archiveContentType = "application/zstd"
)

type ChatService interface {
	signaling.MessageSink

	PostMessage(ctx context.Context, room string, author signaling.Identity, text string) (*models.ChatMessage, error)
	History(ctx context.Context, room string, beforeID int64, limit int) (*models.ChatHistory, error)
	DeleteMessage(ctx context.Context, room string, id int64) error
	ArchiveRoom(ctx context.Context, room string) (*models.ChatArchive, error)
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

type chatService struct {
	messageRepo repositories.MessageRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
	now         func() time.Time

	// последний архив каждой комнаты; предыдущий удаляется после новой выгрузки
	archiveMu sync.Mutex
	archives  map[string]string
}

// NewChatService: uploader может быть nil, тогда архивирование недоступно.
func NewChatService(messageRepo repositories.MessageRepository, uploader storage.FileUploader, logger *slog.Logger) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		uploader:    uploader,
		logger:      logger,
		now:         time.Now,
		archives:    make(map[string]string),
	}
}

func (s *chatService) PostMessage(ctx context.Context, room string, author signaling.Identity, text string) (*models.ChatMessage, error) {
	if !signaling.ValidRoomName(room) {
		return nil, ErrInvalidRoom
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return nil, fmt.Errorf("%w: limit is %d characters", ErrMessageTooLong, MaxMessageRunes)
	}

	msg := &models.ChatMessage{
		Room:     room,
		UserID:   author.UserID,
		Nickname: truncateRunes(author.Name, MaxNicknameRunes),
		Text:     text,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, handleRepositoryError(err)
	}
	return msg, nil
}

// SaveChat вызывается хабом. Ошибки валидации помечаются signaling.ErrInvalidPayload.
func (s *chatService) SaveChat(ctx context.Context, room string, from signaling.Identity, text string) (*models.ChatMessage, error) {
	msg, err := s.PostMessage(ctx, room, from, text)
	if err != nil {
		if errors.Is(err, ErrMessageEmpty) || errors.Is(err, ErrMessageTooLong) ||
			errors.Is(err, ErrInvalidRoom) || errors.Is(err, ErrValidationFailed) {
			return nil, fmt.Errorf("%w: %w", signaling.ErrInvalidPayload, err)
		}
		return nil, err
	}
	return msg, nil
}

func (s *chatService) History(ctx context.Context, room string, beforeID int64, limit int) (*models.ChatHistory, error) {
	if !signaling.ValidRoomName(room) {
		return nil, ErrInvalidRoom
	}
	if beforeID < 0 {
		return nil, ErrInvalidCursor
	}
	limit = clampLimit(limit)

	// Берём на одну запись больше, чтобы понять, есть ли следующая страница.
	msgs, err := s.messageRepo.ListByRoom(ctx, room, beforeID, limit+1)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	history := &models.ChatHistory{Room: room, Messages: msgs}
	if len(msgs) > limit {
		history.Messages = msgs[:limit]
		next := history.Messages[limit-1].ID
		history.NextBefore = &next
	}
	return history, nil
}

// truncateRunes обрезает s до n символов, не разрывая UTF-8.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

func (s *chatService) DeleteMessage(ctx context.Context, room string, id int64) error {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err)
	}
	if msg.Room != room {
		return ErrMessageNotFound
	}
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err)
	}
	return nil
}

// ArchiveRoom выгружает всю историю комнаты (старые первыми) в хранилище как JSON, сжатый zstd.
func (s *chatService) ArchiveRoom(ctx context.Context, room string) (*models.ChatArchive, error) {
	if s.uploader == nil {
		return nil, ErrArchiveUnavailable
	}
	if !signaling.ValidRoomName(room) {
		return nil, ErrInvalidRoom
	}

	msgs, err := s.messageRepo.ListAllByRoom(ctx, room)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if len(msgs) == 0 {
		return nil, ErrRoomEmpty
	}

	raw, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode archive for room %s: %w", room, err)
	}
	compressed := zstdEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/3))

	created := s.now().UTC()
	key := fmt.Sprintf("%s/%s/%d.json.zst", archivePrefix, room, created.Unix())
	res, err := s.uploader.Upload(ctx, key, archiveContentType, bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to upload archive for room %s: %w", room, err)
	}

	s.logger.Info("chat room archived", "room", room, "key", res.Key, "messages", len(msgs), "bytes", len(compressed))
	s.dropSupersededArchive(ctx, room, res.Key)
	return &models.ChatArchive{
		Room:     room,
		Key:      res.Key,
		URL:      res.Location,
		Messages: len(msgs),
		Bytes:    len(compressed),
		Created:  created,
	}, nil
}

// Новый архив содержит всю историю, поэтому предыдущий объект комнаты больше не нужен.
func (s *chatService) dropSupersededArchive(ctx context.Context, room, key string) {
	s.archiveMu.Lock()
	prev := s.archives[room]
	s.archives[room] = key
	s.archiveMu.Unlock()

	if prev == "" || prev == key {
		return
	}
	if err := s.uploader.Delete(ctx, prev); err != nil {
		s.logger.Warn("failed to delete superseded chat archive", "room", room, "key", prev, "error", err)
	}
}

func (s *chatService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention)
	n, err := s.messageRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge chat messages older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return n, nil
}

// zstd.Encoder безопасен для параллельного EncodeAll.
var zstdEncoder = mustZstdEncoder()

func mustZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("chat archive: zstd encoder initialization failed: " + err.Error())
	}
	return enc
}
