package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/platform/auth"
)

func TestTokenManager_IssueVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	m := auth.NewTokenManager("test-secret", time.Hour)
	tok, err := m.Issue(auth.Actor{UserID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	actor, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if actor.UserID != "u1" || actor.Email != "u1@example.com" {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	t.Parallel()

	m := auth.NewTokenManager("test-secret", time.Hour)
	issued := time.Unix(1_700_000_000, 0).UTC()
	m.SetNowForTest(func() time.Time { return issued })

	tok, err := m.Issue(auth.Actor{UserID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.SetNowForTest(func() time.Time { return issued.Add(2 * time.Hour) })
	if _, err := m.Verify(tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	m1 := auth.NewTokenManager("secret-a", time.Hour)
	m2 := auth.NewTokenManager("secret-b", time.Hour)

	tok, err := m1.Issue(auth.Actor{UserID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m2.Verify(tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHashPassword_Roundtrip(t *testing.T) {
	t.Parallel()

	h, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !auth.CheckPassword(h, "hunter22") {
		t.Fatalf("correct password rejected")
	}
	if auth.CheckPassword(h, "hunter23") {
		t.Fatalf("wrong password accepted")
	}
}
