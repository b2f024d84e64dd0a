package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
)

func testUser(name string) *domain.User {
	return &domain.User{
		ID:          uuid.New(),
		Email:       name + "@example.com",
		Username:    name,
		DisplayName: name,
	}
}

func TestSendPersistsThenNotifiesReceiver(t *testing.T) {
	sender := testUser("alice")
	receiver := testUser("bob")
	msgRepo := &fakeMessageRepo{}
	notifier := &fakeNotifier{}

	svc := NewMessageService(msgRepo, newFakeUserRepo(sender, receiver))
	svc.SetNotifier(notifier)

	msg, err := svc.Send(context.Background(), SendMessageInput{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Body:       "hello",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Kind != domain.KindText || msg.IsRead || msg.IsDeleted {
		t.Fatalf("unexpected message defaults: %+v", msg)
	}

	// Stored and retrievable before any notification claim.
	stored, _ := msgRepo.GetByID(context.Background(), msg.ID)
	if stored == nil || stored.Body != "hello" {
		t.Fatalf("message not persisted: %+v", stored)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].kind != "message" || notifier.calls[0].target != receiver.ID {
		t.Fatalf("expected one receiver notification, got %+v", notifier.calls)
	}
}

func TestSendBlockedEitherDirection(t *testing.T) {
	for _, blocker := range []string{"sender", "receiver"} {
		sender := testUser("alice")
		receiver := testUser("bob")
		if blocker == "sender" {
			sender.BlockedUsers = []uuid.UUID{receiver.ID}
		} else {
			receiver.BlockedUsers = []uuid.UUID{sender.ID}
		}
		msgRepo := &fakeMessageRepo{}
		notifier := &fakeNotifier{}
		svc := NewMessageService(msgRepo, newFakeUserRepo(sender, receiver))
		svc.SetNotifier(notifier)

		_, err := svc.Send(context.Background(), SendMessageInput{
			SenderID: sender.ID, ReceiverID: receiver.ID, Body: "hi",
		})
		if !errors.Is(err, ErrBlocked) {
			t.Fatalf("%s blocking: expected ErrBlocked, got %v", blocker, err)
		}
		if len(msgRepo.messages) != 0 {
			t.Fatalf("%s blocking: message must not be persisted", blocker)
		}
		if len(notifier.calls) != 0 {
			t.Fatalf("%s blocking: no event must be emitted", blocker)
		}
	}
}

func TestSendUnknownParties(t *testing.T) {
	sender := testUser("alice")
	svc := NewMessageService(&fakeMessageRepo{}, newFakeUserRepo(sender))

	_, err := svc.Send(context.Background(), SendMessageInput{
		SenderID: sender.ID, ReceiverID: uuid.New(), Body: "hi",
	})
	if !errors.Is(err, ErrReceiverNotFound) {
		t.Fatalf("expected ErrReceiverNotFound, got %v", err)
	}

	_, err = svc.Send(context.Background(), SendMessageInput{
		SenderID: uuid.New(), ReceiverID: sender.ID, Body: "hi",
	})
	if !errors.Is(err, ErrSenderNotFound) {
		t.Fatalf("expected ErrSenderNotFound, got %v", err)
	}
}

func TestSendToSelf(t *testing.T) {
	u := testUser("alice")
	svc := NewMessageService(&fakeMessageRepo{}, newFakeUserRepo(u))

	_, err := svc.Send(context.Background(), SendMessageInput{
		SenderID: u.ID, ReceiverID: u.ID, Body: "hi",
	})
	if !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("expected ErrSelfMessage, got %v", err)
	}
}

func TestMarkReadTwiceSecondIsEmpty(t *testing.T) {
	sender := testUser("alice")
	reader := testUser("bob")
	msgRepo := &fakeMessageRepo{}
	notifier := &fakeNotifier{}
	svc := NewMessageService(msgRepo, newFakeUserRepo(sender, reader))
	svc.SetNotifier(notifier)

	sent, err := svc.Send(context.Background(), SendMessageInput{
		SenderID: sender.ID, ReceiverID: reader.ID, Body: "hi",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	ids, err := svc.MarkRead(context.Background(), reader.ID, sender.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if len(ids) != 1 || ids[0] != sent.ID {
		t.Fatalf("expected exactly the sent message ID, got %v", ids)
	}

	ids, err = svc.MarkRead(context.Background(), reader.ID, sender.ID)
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("second call should return an empty, non-nil set, got %v", ids)
	}

	// Both calls notify the sender, even the empty one.
	var readCalls []notifyCall
	for _, c := range notifier.calls {
		if c.kind == "read" {
			readCalls = append(readCalls, c)
		}
	}
	if len(readCalls) != 2 {
		t.Fatalf("expected 2 read notifications, got %d", len(readCalls))
	}
	for _, c := range readCalls {
		if c.target != sender.ID || c.reader != reader.ID {
			t.Fatalf("read notification addressed wrong: %+v", c)
		}
	}
}

func TestHideIsIdempotentAndPerUser(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	msgRepo := &fakeMessageRepo{}
	svc := NewMessageService(msgRepo, newFakeUserRepo(alice, bob))

	sent, err := svc.Send(context.Background(), SendMessageInput{
		SenderID: alice.ID, ReceiverID: bob.ID, Body: "secret",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	hidden, err := svc.Hide(context.Background(), sent.ID, alice.ID)
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	if !hidden.IsDeleted || hidden.Body != "" {
		t.Fatalf("hide should mark deleted and redact body: %+v", hidden)
	}

	again, err := svc.Hide(context.Background(), sent.ID, alice.ID)
	if err != nil {
		t.Fatalf("second hide: %v", err)
	}
	if len(again.DeleteFor) != 1 {
		t.Fatalf("hide must not duplicate the hidden-for entry: %v", again.DeleteFor)
	}

	// Hidden for alice, still visible to bob.
	aliceView, _ := svc.ListConversation(context.Background(), alice.ID, bob.ID)
	if len(aliceView) != 0 {
		t.Fatalf("alice should not see the hidden message, got %d", len(aliceView))
	}
	bobView, _ := svc.ListConversation(context.Background(), bob.ID, alice.ID)
	if len(bobView) != 1 {
		t.Fatalf("bob should still see the message, got %d", len(bobView))
	}
}

func TestHideUnknownMessage(t *testing.T) {
	svc := NewMessageService(&fakeMessageRepo{}, newFakeUserRepo())
	_, err := svc.Hide(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestDeleteConversationRemovesBothDirections(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	carol := testUser("carol")
	msgRepo := &fakeMessageRepo{}
	svc := NewMessageService(msgRepo, newFakeUserRepo(alice, bob, carol))

	for i, pair := range [][2]uuid.UUID{
		{alice.ID, bob.ID}, {bob.ID, alice.ID}, {alice.ID, carol.ID},
	} {
		msgRepo.Create(context.Background(), &domain.Message{
			ID: uuid.New(), SenderID: pair[0], ReceiverID: pair[1],
			Body: "m", Kind: domain.KindText, CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		})
	}

	count, err := svc.DeleteConversation(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("delete conversation: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 deleted, got %d", count)
	}
	left, _ := svc.ListConversation(context.Background(), alice.ID, carol.ID)
	if len(left) != 1 {
		t.Fatal("unrelated conversation must survive")
	}
}
