package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// fastParams keeps Argon2id cheap enough for unit tests.
var fastParams = HashParams{Time: 1, Memory: 8 * 1024, Threads: 1}

func TestHasher_HashFormat(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(DefaultHashParams())

	hash, err := hasher.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Verify PHC format: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}
	if parts[2] != "v=19" {
		t.Errorf("Expected v=19, got: %s", parts[2])
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("Expected m=65536,t=3,p=4, got: %s", parts[3])
	}
	if strings.Contains(hash, "pw1") {
		t.Error("Hash must not contain the raw password")
	}
}

func TestHasher_ZeroParamsUseDefaults(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(HashParams{})
	if hasher.params != DefaultHashParams() {
		t.Errorf("expected default params, got %+v", hasher.params)
	}
}

func TestHasher_Uniqueness(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(fastParams)
	password := "the_same_password_12345"

	hash1, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Same password should produce different hashes (different salts)
	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	match1, _ := hasher.Verify(password, hash1)
	match2, _ := hasher.Verify(password, hash2)
	if !match1 || !match2 {
		t.Error("Both hashes should verify correctly")
	}
}

func TestHasher_VerifyRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(fastParams)

	passwords := []string{"pw1", "correct horse battery staple", "ünïcødé-пароль", " leading space"}
	for _, password := range passwords {
		hash, err := hasher.Hash(password)
		if err != nil {
			t.Fatalf("Hash(%q) failed: %v", password, err)
		}

		match, err := hasher.Verify(password, hash)
		if err != nil {
			t.Fatalf("Verify(%q) failed: %v", password, err)
		}
		if !match {
			t.Errorf("Correct password %q should match", password)
		}

		match, err = hasher.Verify(password+"x", hash)
		if err != nil {
			t.Fatalf("Verify should not return error for wrong password: %v", err)
		}
		if match {
			t.Errorf("Wrong password for %q should not match", password)
		}
	}
}

func TestHasher_VerifyUsesStoredParams(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(fastParams).Hash("pw1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// A hasher with different cost settings still verifies older hashes.
	match, err := NewHasher(HashParams{Time: 2, Memory: 16 * 1024, Threads: 2}).Verify("pw1", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !match {
		t.Error("hash should verify with the parameters embedded in it")
	}
}

func TestHasher_VerifyLegacyBcrypt(t *testing.T) {
	t.Parallel()

	legacy, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}

	hasher := NewHasher(fastParams)

	match, err := hasher.Verify("pw1", string(legacy))
	if err != nil || !match {
		t.Errorf("legacy bcrypt hash should verify, match=%v err=%v", match, err)
	}

	match, err = hasher.Verify("wrong", string(legacy))
	if err != nil || match {
		t.Errorf("wrong password against bcrypt should be (false, nil), got (%v, %v)", match, err)
	}
}

func TestHasher_VerifyCorruptHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong format", "not-a-hash"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=65536"},
		{"bad params", "$argon2id$v=19$m=x,t=3,p=4$c2FsdA$aGFzaA"},
		{"zero params", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
		{"empty hash", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$"},
		{"truncated bcrypt", "$2b$10$short"},
	}

	hasher := NewHasher(fastParams)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			match, err := hasher.Verify("password", tt.hash)
			if !errors.Is(err, ErrCorruptHash) {
				t.Errorf("Verify(%q) error = %v, want ErrCorruptHash", tt.hash, err)
			}
			if match {
				t.Error("corrupt hash must never match")
			}
		})
	}
}

func TestHasher_VerifyWrongVersion(t *testing.T) {
	t.Parallel()

	// v=18 simulates an incompatible argon2 version
	invalidVersionHash := "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl"

	match, err := NewHasher(fastParams).Verify("password", invalidVersionHash)
	if !errors.Is(err, ErrIncompatibleVersion) {
		t.Errorf("Expected ErrIncompatibleVersion, got: %v", err)
	}
	if !errors.Is(err, ErrCorruptHash) {
		t.Errorf("ErrIncompatibleVersion should classify as ErrCorruptHash")
	}
	if match {
		t.Error("Should not match with incompatible version")
	}
}

func TestQuickHash(t *testing.T) {
	t.Parallel()

	if QuickHash("alice@x.com") != QuickHash("alice@x.com") {
		t.Error("Same input should produce same hash")
	}
	if QuickHash("alice@x.com") == QuickHash("bob@x.com") {
		t.Error("Different input should produce different hash")
	}
	if got := len(QuickHash("")); got != 32 {
		t.Errorf("Hash should be 32 chars, got: %d", got)
	}
}
