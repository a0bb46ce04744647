package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("pw123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw123" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash %q", hash)
	}
	if !VerifyPassword(hash, "pw123") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "pw124") {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("not-a-hash", "pw123") {
		t.Error("malformed hash accepted")
	}
}

func TestHashPasswordCostFallback(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	if err != nil {
		t.Fatal(err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatal(err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
	if !IsPasswordTooLong(err) {
		t.Fatalf("err = %v, want ErrPasswordTooLong", err)
	}
}
