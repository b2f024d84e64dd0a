package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, exclude uuid.UUID) ([]domain.User, error)
	// UpdateProfile overwrites the user's mutable profile fields. An empty
	// displayName or nil avatarURL keeps the stored value. Returns nil if
	// no such user exists.
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string, avatarURL *string) (*domain.User, error)
	Block(ctx context.Context, userID, blockedID uuid.UUID) error
	Unblock(ctx context.Context, userID, blockedID uuid.UUID) error
	UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListBetween returns all messages between the pair ascending by
	// created_at, excluding messages the viewer has hidden.
	ListBetween(ctx context.Context, userA, userB, viewer uuid.UUID) ([]domain.Message, error)
	// ListAllForUser returns every message the user sent or received,
	// descending by created_at.
	ListAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error)
	// MarkReadBulk flips every unread message from fromUser to toUser and
	// returns exactly the IDs it flipped. The select-and-flip is atomic:
	// concurrent calls for the same pair never double-report, and messages
	// appended mid-operation are not swept in.
	MarkReadBulk(ctx context.Context, fromUser, toUser uuid.UUID) ([]uuid.UUID, error)
	// HideForUser adds userID to the message's hidden-for set, marks it
	// deleted and redacts the body. Idempotent; returns nil if no such
	// message exists.
	HideForUser(ctx context.Context, msgID, userID uuid.UUID) (*domain.Message, error)
	// DeleteBetween permanently removes every message between the pair.
	DeleteBetween(ctx context.Context, userA, userB uuid.UUID) (int64, error)
}
