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

const userColumns = `id, email, username, display_name, password_hash,
	avatar_url, blocked_users, status, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, display_name, password_hash,
			avatar_url, blocked_users, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.DisplayName, user.PasswordHash,
		user.AvatarURL, user.BlockedUsers, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) List(ctx context.Context, exclude uuid.UUID) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id <> $1 ORDER BY username ASC`
	rows, err := r.pool.Query(ctx, query, exclude)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.PasswordHash,
			&u.AvatarURL, &u.BlockedUsers, &u.Status, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string, avatarURL *string) (*domain.User, error) {
	query := `
		UPDATE users
		SET display_name = COALESCE(NULLIF($2, ''), display_name),
			avatar_url = COALESCE($3, avatar_url),
			updated_at = $4
		WHERE id = $1
		RETURNING ` + userColumns
	var u domain.User
	err := r.pool.QueryRow(ctx, query, userID, displayName, avatarURL, time.Now()).Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.PasswordHash,
		&u.AvatarURL, &u.BlockedUsers, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Block(ctx context.Context, userID, blockedID uuid.UUID) error {
	query := `
		UPDATE users
		SET blocked_users = array_append(blocked_users, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(blocked_users))`
	_, err := r.pool.Exec(ctx, query, userID, blockedID, time.Now())
	return err
}

func (r *UserRepo) Unblock(ctx context.Context, userID, blockedID uuid.UUID) error {
	query := `
		UPDATE users
		SET blocked_users = array_remove(blocked_users, $2), updated_at = $3
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, userID, blockedID, time.Now())
	return err
}

func (r *UserRepo) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`,
		userID, status, time.Now())
	return err
}

func (r *UserRepo) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.PasswordHash,
		&u.AvatarURL, &u.BlockedUsers, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
