package auth

import (
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	password := "correct horse battery staple"

	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == password {
		t.Error("Hash() must not return the plaintext password")
	}

	if !hasher.Verify(password, hash) {
		t.Error("Verify() should accept the correct password")
	}

	if hasher.Verify("wrong password", hash) {
		t.Error("Verify() should reject a wrong password")
	}
}

func TestPasswordHasher_HashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher()

	hash1, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password should differ")
	}
}
