package auth

import (
	"errors"
	"strings"
	"testing"
)

// testParams keeps derivation cheap so the suite stays fast.
var testParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHasher_Format(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(DefaultArgon2Params).Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

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
}

func TestHasher_SaltedDigests(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	password := "p1"

	hash1, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Same password should produce different digests due to random salt")
	}

	match1, _ := h.Verify(hash1, password)
	match2, _ := h.Verify(hash2, password)
	if !match1 || !match2 {
		t.Error("Both digests should verify correctly")
	}
}

func TestHasher_VerifyCorrectAndIncorrect(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	hash, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := h.Verify(hash, "p1")
	if err != nil || !match {
		t.Errorf("Correct password should match, got match=%v err=%v", match, err)
	}

	match, err = h.Verify(hash, "p2")
	if err != nil {
		t.Fatalf("Verify should not error for wrong password: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestHasher_VerifyUsesStoredParams(t *testing.T) {
	t.Parallel()

	old, err := NewHasher(testParams).Hash("p1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := NewHasher(DefaultArgon2Params).Verify(old, "p1")
	if err != nil || !match {
		t.Errorf("digest made with other params should still verify, got match=%v err=%v", match, err)
	}
}

func TestHasher_VerifyMalformedDigest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"werkzeug digest", "pbkdf2:sha256:600000$salt$abcdef", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA", ErrInvalidHash},
		{"bad version", "$argon2id$v=x$m=65536,t=3,p=4$c2FsdA$aGFzaA", ErrInvalidHash},
		{"old version", "$argon2id$v=16$m=65536,t=3,p=4$c2FsdA$aGFzaA", ErrIncompatibleVersion},
		{"bad params", "$argon2id$v=19$m=abc$c2FsdA$aGFzaA", ErrInvalidHash},
		{"zero params", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA", ErrInvalidHash},
		{"bad hash", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$!!!", ErrInvalidHash},
		{"empty hash", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$", ErrInvalidHash},
	}

	h := NewHasher(testParams)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := h.Verify(tt.hash, "anything")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
			if match {
				t.Error("malformed digest must never match")
			}
		})
	}
}

func BenchmarkHasher_Verify(b *testing.B) {
	h := NewHasher(DefaultArgon2Params)
	hash, _ := h.Hash("benchmark-password")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Verify(hash, "benchmark-password")
	}
}
