package security

import (
	"testing"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4)
	password := []byte("correct horse battery")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == string(password) {
		t.Fatal("Hash returned empty or plaintext")
	}
	if err := h.Compare(hash, password); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong password")); err == nil {
		t.Fatal("Compare with wrong password should fail")
	}
}

func TestHasher_CompareInvalidHash(t *testing.T) {
	h := NewHasher(4)
	if err := h.Compare("not-a-bcrypt-hash", []byte("secret123")); err == nil {
		t.Fatal("Compare against garbage hash should fail")
	}
}

func TestNewHasher_Cost(t *testing.T) {
	testCases := []struct {
		in   int
		want int
	}{
		{0, DefaultBcryptCost},
		{-3, DefaultBcryptCost},
		{2, 4},
		{12, 12},
		{40, 31},
	}
	for _, tc := range testCases {
		if got := NewHasher(tc.in).Cost; got != tc.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tc.in, got, tc.want)
		}
	}
}
