package security_test

import (
	"errors"
	"testing"
	"time"

	"github.com/adilzhan/taskgate/internal/security"
)

func TestAccessRoundTrip(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "u1", "u@example.com", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	c, err := security.ParseAccess("s3cret", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UID != "u1" || c.Email != "u@example.com" || c.Subject != "u1" {
		t.Fatalf("claims mismatch: %#v", c)
	}
}

func TestAccessWrongSecret(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "u1", "u@example.com", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess("other", tok); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAccessExpired(t *testing.T) {
	tok, err := security.MakeAccess("s3cret", "u1", "u@example.com", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.ParseAccess("s3cret", tok); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestAccessMalformed(t *testing.T) {
	if _, err := security.ParseAccess("s3cret", "not.a.jwt"); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
