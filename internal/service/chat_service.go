package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
	"github.com/dkovacs/whisper/internal/repository"
)

// ChatService derives per-user conversation summaries from the message log.
type ChatService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

func NewChatService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// Summarize returns one entry per distinct counterpart, carrying the most
// recent message still visible to the user. Output keeps first-encounter
// order, which is recency order given the descending log scan.
func (s *ChatService) Summarize(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error) {
	messages, err := s.messageRepo.ListAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	summaries := []domain.ConversationSummary{}
	for _, msg := range messages {
		if !msg.VisibleTo(userID) {
			continue
		}
		counterpart := msg.Counterpart(userID)
		if _, ok := seen[counterpart]; ok {
			continue
		}
		seen[counterpart] = struct{}{}

		user, err := s.userRepo.GetByID(ctx, counterpart)
		if err != nil {
			return nil, err
		}
		if user == nil {
			user = domain.StubUser(counterpart)
		}

		summaries = append(summaries, domain.ConversationSummary{
			Counterpart: user,
			LastMessage: msg,
		})
	}

	return summaries, nil
}
