package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovacs/whisper/internal/domain"
)

const messageColumns = `id, sender_id, receiver_id, body, kind, media_url,
	is_read, is_deleted, delete_for, created_at, updated_at`

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, body, kind, media_url,
			is_read, is_deleted, delete_for, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Body, msg.Kind, msg.MediaURL,
		msg.IsRead, msg.IsDeleted, msg.DeleteFor, msg.CreatedAt, msg.UpdatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	msg, err := scanMessage(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB, viewer uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
			AND NOT ($3 = ANY(delete_for))
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, userA, userB, viewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *MessageRepo) ListAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// MarkReadBulk selects and flips in a single UPDATE ... RETURNING, so the
// affected set is exact under concurrent calls and concurrent appends.
func (r *MessageRepo) MarkReadBulk(ctx context.Context, fromUser, toUser uuid.UUID) ([]uuid.UUID, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE, updated_at = $3
		WHERE sender_id = $1 AND receiver_id = $2 AND NOT is_read
		RETURNING id`
	rows, err := r.pool.Query(ctx, query, fromUser, toUser, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MessageRepo) HideForUser(ctx context.Context, msgID, userID uuid.UUID) (*domain.Message, error) {
	query := `
		UPDATE messages
		SET delete_for = array_append(delete_for, $2),
			is_deleted = TRUE,
			body = '',
			updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(delete_for))
		RETURNING ` + messageColumns
	msg, err := scanMessage(r.pool.QueryRow(ctx, query, msgID, userID, time.Now()))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the message is gone or the user already hid it. Re-fetch
		// so a repeated hide stays a no-op instead of a NotFound.
		return r.GetByID(ctx, msgID)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *MessageRepo) DeleteBetween(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	query := `
		DELETE FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`
	tag, err := r.pool.Exec(ctx, query, userA, userB)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	err := row.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &msg.Kind,
		&msg.MediaURL, &msg.IsRead, &msg.IsDeleted, &msg.DeleteFor,
		&msg.CreatedAt, &msg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func collectMessages(rows pgx.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}
