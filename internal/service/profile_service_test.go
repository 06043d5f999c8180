package service

import (
	"context"
	"testing"

	"duitsplit/internal/models"
)

func TestProfileProvisionDefaults(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store)
	ctx := context.Background()

	u, err := svc.Get(ctx, "user_abc")
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if u.Username != "user_abc" {
		t.Errorf("expected username to default to the id, got %s", u.Username)
	}
	if u.AvatarURL != models.DefaultAvatar {
		t.Errorf("expected default avatar, got %s", u.AvatarURL)
	}
}

func TestProfilePartialUpdate(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store)
	ctx := context.Background()

	username := "ali"
	bank := "Maybank"
	if _, err := svc.Update(ctx, "user_abc", UpdateProfileRequest{Username: &username, Bank: &bank}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	phone := "0123456789"
	u, err := svc.Update(ctx, "user_abc", UpdateProfileRequest{Phone: &phone})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	// Earlier fields survive a later partial update.
	if u.Username != "ali" || u.Bank != "Maybank" || u.Phone != "0123456789" {
		t.Errorf("unexpected profile after updates: %+v", u)
	}
}

func TestPINLifecycle(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store)
	ctx := context.Background()

	set, _, err := svc.PINStatus(ctx, "user_abc")
	if err != nil {
		t.Fatalf("failed to get pin status: %v", err)
	}
	if set {
		t.Fatal("expected no pin initially")
	}

	err = svc.UpdatePIN(ctx, "user_abc", UpdatePINRequest{NewPIN: "12345"})
	assertKind(t, err, KindInvalid)

	if err := svc.UpdatePIN(ctx, "user_abc", UpdatePINRequest{NewPIN: "123456"}); err != nil {
		t.Fatalf("failed to set pin: %v", err)
	}

	set, masked, err := svc.PINStatus(ctx, "user_abc")
	if err != nil {
		t.Fatalf("failed to get pin status: %v", err)
	}
	if !set || masked != "******" {
		t.Errorf("expected masked pin, got set=%v masked=%q", set, masked)
	}

	// Rotation requires the current pin.
	err = svc.UpdatePIN(ctx, "user_abc", UpdatePINRequest{NewPIN: "654321"})
	assertKind(t, err, KindInvalid)
	err = svc.UpdatePIN(ctx, "user_abc", UpdatePINRequest{CurrentPIN: "000000", NewPIN: "654321"})
	assertKind(t, err, KindForbidden)
	if err := svc.UpdatePIN(ctx, "user_abc", UpdatePINRequest{CurrentPIN: "123456", NewPIN: "654321"}); err != nil {
		t.Fatalf("failed to rotate pin: %v", err)
	}

	if err := svc.VerifyPIN(ctx, "user_abc", "654321"); err != nil {
		t.Fatalf("failed to verify new pin: %v", err)
	}
	err = svc.VerifyPIN(ctx, "user_abc", "123456")
	assertKind(t, err, KindForbidden)
}

func TestCreateAndCheckUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewProfileService(store)
	ctx := context.Background()

	exists, err := svc.CheckUser(ctx, "user_new")
	if err != nil {
		t.Fatalf("failed to check user: %v", err)
	}
	if exists {
		t.Fatal("expected user to not exist yet")
	}

	u, created, err := svc.CreateUser(ctx, CreateUserRequest{
		UserID:   "user_new",
		Username: "newbie",
		Email:    "new@example.com",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if !created || u.Username != "newbie" {
		t.Errorf("expected fresh user newbie, got created=%v %+v", created, u)
	}

	// Re-creating is a no-op that reports the existing row.
	u, created, err = svc.CreateUser(ctx, CreateUserRequest{UserID: "user_new", Username: "other"})
	if err != nil {
		t.Fatalf("failed to re-create user: %v", err)
	}
	if created || u.Username != "newbie" {
		t.Errorf("expected existing row untouched, got created=%v %+v", created, u)
	}
}
