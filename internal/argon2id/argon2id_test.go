package argon2id

import (
	"errors"
	"strings"
	"testing"
)

// testParams keeps the KDF cheap in tests.
var testParams = Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple", testParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("Hash() = %q, want $argon2id$ prefix", hash)
	}

	match, err := Verify("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !match {
		t.Error("Verify() = false for the correct password")
	}

	match, err = Verify("wrong password", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if match {
		t.Error("Verify() = true for a wrong password")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	first, err := Hash("same password", testParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := Hash("same password", testParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical; salt is not random")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "not a hash", hash: "plaintext"},
		{name: "wrong algorithm", hash: "$argon2i$v=19$m=8192,t=1,p=2$c2FsdA$a2V5"},
		{name: "missing sections", hash: "$argon2id$v=19$m=8192,t=1,p=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Verify("password", tt.hash); !errors.Is(err, ErrInvalidHash) {
				t.Errorf("Verify() error = %v, want ErrInvalidHash", err)
			}
		})
	}
}

func TestVerify_IncompatibleVersion(t *testing.T) {
	hash := "$argon2id$v=18$m=8192,t=1,p=2$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5"
	if _, err := Verify("password", hash); !errors.Is(err, ErrIncompatibleVersion) {
		t.Errorf("Verify() error = %v, want ErrIncompatibleVersion", err)
	}
}
