package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
	"github.com/Dosada05/esports-arena/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memMessageRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []models.ChatMessage
	err    error
	clock  func() time.Time
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{clock: func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }}
}

func (r *memMessageRepo) Create(_ context.Context, msg *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = r.clock()
	r.rows = append(r.rows, *msg)
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id int64) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, repositories.ErrMessageNotFound
}

func (r *memMessageRepo) ListByRoom(_ context.Context, room string, beforeID int64, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []models.ChatMessage{}
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.rows[i]
		if m.Room == room && (beforeID == 0 || m.ID < beforeID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) ListAllByRoom(_ context.Context, room string) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ChatMessage{}
	for _, m := range r.rows {
		if m.Room == room {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMessageRepo) Count(_ context.Context, since *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, m := range r.rows {
		if since == nil || !m.CreatedAt.Before(*since) {
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	var n int64
	for _, m := range r.rows {
		if m.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.rows = kept
	return n, nil
}

func (r *memMessageRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.rows {
		if m.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMessageNotFound
}

type memUploader struct {
	objects     map[string][]byte
	contentType map[string]string
	err         error
}

func newMemUploader() *memUploader {
	return &memUploader{objects: map[string][]byte{}, contentType: map[string]string{}}
}

func (u *memUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.objects[key] = buf.Bytes()
	u.contentType[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	return nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}
