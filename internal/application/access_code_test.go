package application

import (
	"errors"
	"strings"
	"testing"
)

var testArgon2idParams = Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

func TestHashAndVerifyAccessCode(t *testing.T) {
	t.Parallel()

	encoded, err := HashAccessCode("1234", testArgon2idParams)
	if err != nil {
		t.Fatalf("HashAccessCode failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	if err := VerifyAccessCode(encoded, "1234"); err != nil {
		t.Fatalf("expected code to verify, got %v", err)
	}
	if err := VerifyAccessCode(encoded, "4321"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	again, err := HashAccessCode("1234", testArgon2idParams)
	if err != nil {
		t.Fatalf("HashAccessCode failed: %v", err)
	}
	if again == encoded {
		t.Fatalf("expected distinct salts to produce distinct encodings")
	}
}

func TestVerifyAccessCode_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                                  ErrInvalidCodeHash,
		"plain":                             ErrInvalidCodeHash,
		"$bcrypt$v=19$m=1,t=1,p=1$AA$AA":    ErrInvalidCodeHash,
		"$argon2id$v=18$m=1,t=1,p=1$AA$AA":  ErrIncompatibleCodeVersion,
		"$argon2id$v=19$m=x,t=1,p=1$AA$AA":  ErrInvalidCodeHash,
		"$argon2id$v=19$m=1,t=1,p=1$!!$AA":  ErrInvalidCodeHash,
		"$argon2id$v=19$m=1,t=1,p=1$AA$!!!": ErrInvalidCodeHash,
	}
	for encoded, want := range cases {
		if err := VerifyAccessCode(encoded, "1234"); !errors.Is(err, want) {
			t.Fatalf("VerifyAccessCode(%q) = %v, want %v", encoded, err, want)
		}
	}
}
