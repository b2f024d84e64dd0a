package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
	"github.com/dkovacs/whisper/internal/repository"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrSenderNotFound   = errors.New("sender not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrBlocked          = errors.New("either party has blocked the other")
	ErrSelfMessage      = errors.New("cannot message yourself")
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyMessagesRead(contactID, readerID uuid.UUID, messageIDs []uuid.UUID)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Body       string    `json:"message"`
	Kind       string    `json:"kind,omitempty"`
	MediaURL   *string   `json:"mediaUrl,omitempty"`
}

// Send validates both parties, appends the message, then pushes it to the
// receiver's live sessions. Persist happens strictly before notify, so a
// client never sees a live message it cannot also fetch back.
func (s *MessageService) Send(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	if input.SenderID == input.ReceiverID {
		return nil, ErrSelfMessage
	}

	sender, err := s.userRepo.GetByID(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrSenderNotFound
	}

	receiver, err := s.userRepo.GetByID(ctx, input.ReceiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrReceiverNotFound
	}

	if sender.HasBlocked(receiver.ID) || receiver.HasBlocked(sender.ID) {
		return nil, ErrBlocked
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.KindText
	}

	now := time.Now()
	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Body:       input.Body,
		Kind:       kind,
		MediaURL:   input.MediaURL,
		IsRead:     false,
		IsDeleted:  false,
		DeleteFor:  []uuid.UUID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}

	return msg, nil
}

// ListConversation returns the visible messages between the user and a
// contact, ascending by time.
func (s *MessageService) ListConversation(ctx context.Context, userID, contactID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListBetween(ctx, userID, contactID, userID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkRead flips every unread message from contactID to readerID and
// notifies the contact's live sessions with the exact affected set. An
// empty set is not an error; the notification still goes out.
func (s *MessageService) MarkRead(ctx context.Context, readerID, contactID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.messageRepo.MarkReadBulk(ctx, contactID, readerID)
	if err != nil {
		return nil, fmt.Errorf("marking read: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	if s.notifier != nil {
		s.notifier.NotifyMessagesRead(contactID, readerID, ids)
	}

	return ids, nil
}

// Hide removes the message from userID's view. Idempotent: hiding twice
// yields the same state.
func (s *MessageService) Hide(ctx context.Context, messageID, userID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.HideForUser(ctx, messageID, userID)
	if err != nil {
		return nil, fmt.Errorf("hiding message: %w", err)
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

// DeleteConversation permanently removes every message between the pair.
func (s *MessageService) DeleteConversation(ctx context.Context, userID, contactID uuid.UUID) (int64, error) {
	count, err := s.messageRepo.DeleteBetween(ctx, userID, contactID)
	if err != nil {
		return 0, fmt.Errorf("deleting conversation: %w", err)
	}
	return count, nil
}
