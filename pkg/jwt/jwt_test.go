package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := ParseUserID("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Fatalf("got user id %d want 42", id)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret", 1, time.Hour)
	if _, err := ParseUserID("other", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, _ := GenerateToken("secret", 1, -time.Minute)
	if _, err := ParseUserID("secret", token); err == nil {
		t.Fatal("expected expiry error")
	}
}
