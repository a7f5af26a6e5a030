package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParse(t *testing.T) {
	m := NewJWTManager(secret, time.Minute)
	user := uuid.New()

	token, err := m.GenerateAccessToken(user, []string{"SINDICO"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != user {
		t.Fatalf("subject: got %v (%v)", id, err)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "SINDICO" {
		t.Fatalf("roles: got %v", claims.Roles)
	}
}

func TestParseExpired(t *testing.T) {
	m := NewJWTManager(secret, time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := m.GenerateAccessToken(uuid.New(), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	m.now = time.Now
	if _, err := m.ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	token, err := NewJWTManager(secret, time.Minute).GenerateAccessToken(uuid.New(), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := NewJWTManager("ffffffffffffffffffffffffffffffff", time.Minute)
	if _, err := other.ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestUserIDInvalidSubject(t *testing.T) {
	c := &Claims{}
	c.Subject = "admin@condominio"
	if _, err := c.UserID(); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
