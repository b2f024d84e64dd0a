package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
)

func seedMessage(repo *fakeMessageRepo, sender, receiver uuid.UUID, body string, at time.Time) *domain.Message {
	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Body:       body,
		Kind:       domain.KindText,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	repo.Create(context.Background(), msg)
	return msg
}

func TestSummarizeOneEntryPerCounterpartMostRecentFirst(t *testing.T) {
	me := testUser("me")
	bob := testUser("bob")
	carol := testUser("carol")
	repo := &fakeMessageRepo{}
	base := time.Now()

	seedMessage(repo, me.ID, bob.ID, "old to bob", base)
	seedMessage(repo, carol.ID, me.ID, "from carol", base.Add(1*time.Minute))
	seedMessage(repo, bob.ID, me.ID, "new from bob", base.Add(2*time.Minute))

	svc := NewChatService(repo, newFakeUserRepo(me, bob, carol))
	summaries, err := svc.Summarize(context.Background(), me.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	// Recency order: bob's latest message is newest.
	if summaries[0].Counterpart.ID != bob.ID || summaries[0].LastMessage.Body != "new from bob" {
		t.Fatalf("first summary wrong: %+v", summaries[0])
	}
	if summaries[1].Counterpart.ID != carol.ID || summaries[1].LastMessage.Body != "from carol" {
		t.Fatalf("second summary wrong: %+v", summaries[1])
	}
}

func TestSummarizeSkipsHiddenMessages(t *testing.T) {
	me := testUser("me")
	bob := testUser("bob")
	repo := &fakeMessageRepo{}
	base := time.Now()

	seedMessage(repo, bob.ID, me.ID, "older visible", base)
	newest := seedMessage(repo, bob.ID, me.ID, "newest hidden", base.Add(time.Minute))
	repo.HideForUser(context.Background(), newest.ID, me.ID)

	svc := NewChatService(repo, newFakeUserRepo(me, bob))
	summaries, err := svc.Summarize(context.Background(), me.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].LastMessage.Body != "older visible" {
		t.Fatalf("hidden message must not be the summary head: %+v", summaries[0].LastMessage)
	}
}

func TestSummarizeStubsVanishedCounterpart(t *testing.T) {
	me := testUser("me")
	ghost := uuid.New() // no user record
	repo := &fakeMessageRepo{}
	seedMessage(repo, ghost, me.ID, "from beyond", time.Now())

	svc := NewChatService(repo, newFakeUserRepo(me))
	summaries, err := svc.Summarize(context.Background(), me.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].Counterpart.ID != ghost || summaries[0].Counterpart.Username != "deleted" {
		t.Fatalf("expected stub counterpart, got %+v", summaries[0].Counterpart)
	}
}

func TestSummarizeEmptyLog(t *testing.T) {
	me := testUser("me")
	svc := NewChatService(&fakeMessageRepo{}, newFakeUserRepo(me))
	summaries, err := svc.Summarize(context.Background(), me.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summaries == nil || len(summaries) != 0 {
		t.Fatalf("expected empty, non-nil slice, got %v", summaries)
	}
}
