package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
)

// In-memory repository fakes mirroring the Postgres semantics.

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	m := make(map[uuid.UUID]*domain.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(_ context.Context, exclude uuid.UUID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.ID != exclude {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID uuid.UUID, displayName string, avatarURL *string) (*domain.User, error) {
	u := r.users[userID]
	if u == nil {
		return nil, nil
	}
	if displayName != "" {
		u.DisplayName = displayName
	}
	if avatarURL != nil {
		u.AvatarURL = avatarURL
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Block(_ context.Context, userID, blockedID uuid.UUID) error {
	u := r.users[userID]
	if u != nil && !u.HasBlocked(blockedID) {
		u.BlockedUsers = append(u.BlockedUsers, blockedID)
	}
	return nil
}

func (r *fakeUserRepo) Unblock(_ context.Context, userID, blockedID uuid.UUID) error {
	u := r.users[userID]
	if u == nil {
		return nil
	}
	var kept []uuid.UUID
	for _, id := range u.BlockedUsers {
		if id != blockedID {
			kept = append(kept, id)
		}
	}
	u.BlockedUsers = kept
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, userID uuid.UUID, status string) error {
	if u := r.users[userID]; u != nil {
		u.Status = status
	}
	return nil
}

type fakeMessageRepo struct {
	messages []*domain.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) ListBetween(_ context.Context, userA, userB, viewer uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		between := (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA)
		if between && m.VisibleTo(viewer) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) ListAllForUser(_ context.Context, userID uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) MarkReadBulk(_ context.Context, fromUser, toUser uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, m := range r.messages {
		if m.SenderID == fromUser && m.ReceiverID == toUser && !m.IsRead {
			m.IsRead = true
			m.UpdatedAt = time.Now()
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (r *fakeMessageRepo) HideForUser(_ context.Context, msgID, userID uuid.UUID) (*domain.Message, error) {
	for _, m := range r.messages {
		if m.ID != msgID {
			continue
		}
		if m.VisibleTo(userID) {
			m.DeleteFor = append(m.DeleteFor, userID)
			m.IsDeleted = true
			m.Body = ""
			m.UpdatedAt = time.Now()
		}
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMessageRepo) DeleteBetween(_ context.Context, userA, userB uuid.UUID) (int64, error) {
	var kept []*domain.Message
	var deleted int64
	for _, m := range r.messages {
		between := (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA)
		if between {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.messages = kept
	return deleted, nil
}

// fakeNotifier records every notification in call order.

type notifyCall struct {
	kind    string // "message" | "read"
	target  uuid.UUID
	reader  uuid.UUID
	msg     *domain.Message
	readIDs []uuid.UUID
}

type fakeNotifier struct {
	calls []notifyCall
}

func (n *fakeNotifier) NotifyNewMessage(msg *domain.Message) {
	n.calls = append(n.calls, notifyCall{kind: "message", target: msg.ReceiverID, msg: msg})
}

func (n *fakeNotifier) NotifyMessagesRead(contactID, readerID uuid.UUID, messageIDs []uuid.UUID) {
	n.calls = append(n.calls, notifyCall{kind: "read", target: contactID, reader: readerID, readIDs: messageIDs})
}
