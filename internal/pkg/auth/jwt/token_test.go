package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u1", Name: "Ada", Role: "mentor"}, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID() != "u1" || claims.Name != "Ada" || claims.Role != "mentor" {
		t.Errorf("Unexpected claims %+v", claims)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Error("Expected signature verification failure")
	}
}

func TestExpired(t *testing.T) {
	live, _ := GenerateToken(&Payload{ID: "u1"}, "secret", time.Hour)
	dead, _ := GenerateToken(&Payload{ID: "u1"}, "secret", -time.Minute)

	now := time.Now()

	if Expired(live, now) {
		t.Error("Live token reported expired")
	}
	if !Expired(dead, now) {
		t.Error("Expired token not detected")
	}
	if Expired("opaque-session-token", now) {
		t.Error("Opaque tokens must never be treated as expired")
	}
}

func TestParseUnverified_Opaque(t *testing.T) {
	if _, err := ParseUnverified("abc"); err != ErrNotJWT {
		t.Errorf("Expected ErrNotJWT, got %v", err)
	}
}
