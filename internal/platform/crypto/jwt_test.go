package crypto

import (
	"testing"
	"time"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", "test-user-id", time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("Expected no error parsing token, got %v", err)
	}
	if claims.Sub != "test-user-id" {
		t.Errorf("Expected user ID test-user-id, got %s", claims.Sub)
	}
	if claims.ID == "" {
		t.Error("Expected JTI to be present in claims")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	if _, err := ParseToken("test-secret", "invalid.token.here"); err == nil {
		t.Error("Expected error for invalid token")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", "u1", time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Error("Expected error for token signed with another secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("test-secret", "u1", -time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := ParseToken("test-secret", token); err == nil {
		t.Error("Expected error for expired token")
	}
}
