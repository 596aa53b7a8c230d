package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	tok, err := m.Issue("alice", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sub, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q, want alice", sub)
	}
}

func TestParseExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	tok, err := m.Issue("alice", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	tok, err := issuer.Issue("alice", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Parse(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseMissingSubject(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	tok, err := m.Issue("", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Parse(raw); err != ErrInvalidToken {
			t.Fatalf("Parse(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	h1, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("expected different hashes for the same password (salted)")
	}
	if err := CheckPassword(h1, "hunter22"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := CheckPassword(h1, "wrong"); err == nil {
		t.Fatal("expected mismatch for wrong password")
	}
}
