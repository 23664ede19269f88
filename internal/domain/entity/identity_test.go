package entity

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNormalizeUsername(t *testing.T) {
	cases := map[string]string{
		"Alice":          "alice",
		"  Bob Smith  ":  "bobsmith",
		"C\tA\nROL":      "carol",
		"already":        "already",
	}
	for in, want := range cases {
		if got := NormalizeUsername(in); got != want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeriveAddress(t *testing.T) {
	if got := DeriveAddress("bobsmith", "pragyanai.com"); got != "bobsmith.pragyanai.com" {
		t.Fatalf("got %q", got)
	}
	if got := DeriveAddress("bob", ".example.test"); got != "bob.example.test" {
		t.Fatalf("leading dot not trimmed: %q", got)
	}
}

func TestIdentityPassword(t *testing.T) {
	id := NewIdentity("alice", "pragyanai.com", "1990-01-01")
	if err := id.SetPassword("s3cret", bcrypt.MinCost); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if id.PasswordHash == "s3cret" {
		t.Fatal("password stored in clear")
	}
	if !id.CheckPassword("s3cret") {
		t.Fatal("correct password rejected")
	}
	if id.CheckPassword("wrong") {
		t.Fatal("wrong password accepted")
	}
	if id.Address != "alice.pragyanai.com" {
		t.Fatalf("address = %q", id.Address)
	}
}
