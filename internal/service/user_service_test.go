package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestUpdateProfileChangesDisplayName(t *testing.T) {
	user := testUser("alice")
	avatar := "https://cdn.example.com/a.png"
	user.AvatarURL = &avatar
	svc := NewUserService(newFakeUserRepo(user))

	updated, err := svc.UpdateProfile(context.Background(), user.ID, "Alice Liddell", nil)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.DisplayName != "Alice Liddell" {
		t.Fatalf("display name not updated: %q", updated.DisplayName)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != avatar {
		t.Fatal("avatar should survive a name-only update")
	}
}

func TestUpdateProfileSetsAvatarOnly(t *testing.T) {
	user := testUser("bob")
	svc := NewUserService(newFakeUserRepo(user))

	avatar := "https://cdn.example.com/b.png"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, "", &avatar)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != avatar {
		t.Fatalf("avatar not set: %v", updated.AvatarURL)
	}
	if updated.DisplayName != "bob" {
		t.Fatalf("display name should survive an avatar-only update: %q", updated.DisplayName)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), "Nobody", nil)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
