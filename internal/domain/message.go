package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message kinds, matching the client-side media picker.
const (
	KindText  = "text"
	KindImage = "image"
	KindVideo = "video"
	KindAudio = "audio"
	KindFile  = "file"
)

func ValidKind(kind string) bool {
	switch kind {
	case KindText, KindImage, KindVideo, KindAudio, KindFile:
		return true
	}
	return false
}

// Message is one entry in the pairwise append-only log. Core fields are
// immutable after creation; only IsRead, IsDeleted and DeleteFor change.
// IsDeleted means at least one participant has hidden the message.
type Message struct {
	ID         uuid.UUID   `json:"id"`
	SenderID   uuid.UUID   `json:"senderId"`
	ReceiverID uuid.UUID   `json:"receiverId"`
	Body       string      `json:"body"`
	Kind       string      `json:"kind"`
	MediaURL   *string     `json:"mediaUrl,omitempty"`
	IsRead     bool        `json:"isRead"`
	IsDeleted  bool        `json:"isDeleted"`
	DeleteFor  []uuid.UUID `json:"-"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// VisibleTo reports whether user has not individually hidden this message.
func (m *Message) VisibleTo(user uuid.UUID) bool {
	for _, id := range m.DeleteFor {
		if id == user {
			return false
		}
	}
	return true
}

// Counterpart returns the other participant from user's point of view.
func (m *Message) Counterpart(user uuid.UUID) uuid.UUID {
	if m.SenderID == user {
		return m.ReceiverID
	}
	return m.SenderID
}
