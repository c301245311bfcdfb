package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/lib/pq"
)

var (
	ErrMessageNotFound = errors.New("chat message not found")
	ErrValueTooLong    = errors.New("chat message field exceeds column length")
)

type MessageRepository interface {
	// Create сохраняет сообщение и заполняет ID и CreatedAt.
	Create(ctx context.Context, msg *models.ChatMessage) error
	GetByID(ctx context.Context, id int64) (*models.ChatMessage, error)
	// ListByRoom возвращает до limit сообщений комнаты с id < beforeID, новые первыми.
	// beforeID == 0 означает "с самого нового".
	ListByRoom(ctx context.Context, room string, beforeID int64, limit int) ([]models.ChatMessage, error)
	// ListAllByRoom возвращает всю историю комнаты в хронологическом порядке.
	ListAllByRoom(ctx context.Context, room string) ([]models.ChatMessage, error)
	Count(ctx context.Context, since *time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type postgresMessageRepository struct {
	db SQLExecutor
}

func NewPostgresMessageRepository(db SQLExecutor) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (room, user_id, nickname, text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.Room,
		msg.UserID,
		msg.Nickname,
		msg.Text,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "22001" { // string_data_right_truncation
			return ErrValueTooLong
		}
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

func (r *postgresMessageRepository) GetByID(ctx context.Context, id int64) (*models.ChatMessage, error) {
	query := `
		SELECT id, room, user_id, nickname, text, created_at
		FROM chat_messages
		WHERE id = $1`

	var msg models.ChatMessage
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.Room, &msg.UserID, &msg.Nickname, &msg.Text, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *postgresMessageRepository) ListByRoom(ctx context.Context, room string, beforeID int64, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, room, user_id, nickname, text, created_at
		FROM chat_messages
		WHERE room = $1 AND ($2::bigint = 0 OR id < $2::bigint)
		ORDER BY id DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, room, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages for room %q: %w", room, err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *postgresMessageRepository) ListAllByRoom(ctx context.Context, room string) ([]models.ChatMessage, error) {
	query := `
		SELECT id, room, user_id, nickname, text, created_at
		FROM chat_messages
		WHERE room = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, room)
	if err != nil {
		return nil, fmt.Errorf("failed to export chat messages for room %q: %w", room, err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *postgresMessageRepository) Count(ctx context.Context, since *time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM chat_messages`
	args := []interface{}{}
	if since != nil {
		query += ` WHERE created_at >= $1`
		args = append(args, *since)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return total, nil
}

func (r *postgresMessageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM chat_messages WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *postgresMessageRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM chat_messages WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return checkAffectedRows(result, ErrMessageNotFound)
}
