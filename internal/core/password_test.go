package core

import (
	"strings"
	"testing"
)

func TestPasswordHashers(t *testing.T) {
	hashers := map[string]PasswordHasher{
		"sha256": SHA256Hasher{},
		"bcrypt": BcryptHasher{Cost: 4},
	}
	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("pw1")
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			if hash == "pw1" {
				t.Fatal("hash must not equal the plaintext")
			}
			if !h.Verify(hash, "pw1") {
				t.Fatal("expected matching password to verify")
			}
			if h.Verify(hash, "pw2") {
				t.Fatal("expected other password to be refused")
			}
		})
	}
}

func TestSHA256HasherIsDeterministic(t *testing.T) {
	a, _ := SHA256Hasher{}.Hash("admin")
	b, _ := SHA256Hasher{}.Hash("admin")
	if a != b || len(a) != 64 {
		t.Fatalf("unexpected digests %q %q", a, b)
	}
	if strings.ToLower(a) != a {
		t.Fatal("expected lowercase hex")
	}
}

func TestNewPasswordHasher(t *testing.T) {
	if h, err := NewPasswordHasher("", 0); err != nil || h != (SHA256Hasher{}) {
		t.Fatalf("default: %v %v", h, err)
	}
	if h, err := NewPasswordHasher("bcrypt", 5); err != nil || h.(BcryptHasher).Cost != 5 {
		t.Fatalf("bcrypt: %v %v", h, err)
	}
	if _, err := NewPasswordHasher("bcrypt", 99); err == nil {
		t.Fatal("expected out of range cost to fail")
	}
	if _, err := NewPasswordHasher("md5", 0); err == nil {
		t.Fatal("expected unknown hasher to fail")
	}
}
