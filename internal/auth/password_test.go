package auth

import (
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hash == "Sup3rSecret!" {
		t.Error("Expected hash to differ from the plain password")
	}

	if !VerifyPassword(hash, "Sup3rSecret!") {
		t.Error("Expected password to verify against its own hash")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if VerifyPassword(hash, "notthepassword") {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "whatever") {
		t.Error("Expected malformed hash to fail verification")
	}
}
