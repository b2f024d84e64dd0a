package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	Username     string      `json:"username"`
	DisplayName  string      `json:"displayName"`
	PasswordHash string      `json:"-"`
	AvatarURL    *string     `json:"avatarUrl,omitempty"`
	BlockedUsers []uuid.UUID `json:"blockedUsers,omitempty"`
	// Status is a best-effort last-known snapshot written at login/logout.
	// Authoritative liveness lives in the presence registry.
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasBlocked reports whether other is on u's block list.
func (u *User) HasBlocked(other uuid.UUID) bool {
	for _, id := range u.BlockedUsers {
		if id == other {
			return true
		}
	}
	return false
}

// StubUser stands in for a counterpart that no longer exists.
func StubUser(id uuid.UUID) *User {
	return &User{ID: id, Username: "deleted", DisplayName: "Deleted User"}
}
