package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisSessionLifecycle(t *testing.T) {
	redis := miniredis.RunT(t)
	sessions := NewRedisSessionStore(redis.Addr(), "", time.Hour)

	token, err := sessions.NewSession("u-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	userID, ok, err := sessions.GetUserIDByToken(token)
	if err != nil || !ok || userID != "u-1" {
		t.Fatalf("resolve: id=%q ok=%v err=%v", userID, ok, err)
	}

	if err := sessions.DeleteSession(token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := sessions.GetUserIDByToken(token); err != nil || ok {
		t.Fatalf("deleted token still resolves: ok=%v err=%v", ok, err)
	}

	// Unknown token is a clean miss, not an error.
	if _, ok, err := sessions.GetUserIDByToken("never-issued"); err != nil || ok {
		t.Fatalf("unknown token: ok=%v err=%v", ok, err)
	}
	// Deleting an unknown token is not an error either.
	if err := sessions.DeleteSession("never-issued"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
}

func TestRedisSessionExpiry(t *testing.T) {
	redis := miniredis.RunT(t)
	sessions := NewRedisSessionStore(redis.Addr(), "", time.Minute)

	token, err := sessions.NewSession("u-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	redis.FastForward(2 * time.Minute)
	if _, ok, err := sessions.GetUserIDByToken(token); err != nil || ok {
		t.Fatalf("expired token still resolves: ok=%v err=%v", ok, err)
	}
}
