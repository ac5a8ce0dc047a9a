package vault

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	v := New("test-secret", 4)

	ciphertext, err := v.Encrypt("refresh-token-value", "user:42:google")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if strings.Contains(ciphertext, "refresh-token-value") {
		t.Fatal("ciphertext leaks plaintext")
	}

	plaintext, err := v.Decrypt(ciphertext, "user:42:google")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plaintext != "refresh-token-value" {
		t.Fatalf("got %q, want original plaintext", plaintext)
	}
}

func TestDecryptWrongContext(t *testing.T) {
	v := New("test-secret", 4)

	ciphertext, err := v.Encrypt("secret", "user:1:google")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := v.Decrypt(ciphertext, "user:2:google"); err == nil {
		t.Fatal("expected error for mismatched context")
	}
}

func TestDecryptGarbage(t *testing.T) {
	v := New("test-secret", 4)

	if _, err := v.Decrypt("not base64 at all!!", "ctx"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := v.Decrypt("c2hvcnQ=", "ctx"); err == nil {
		t.Fatal("expected short ciphertext error")
	}
}

func TestKeyCacheEviction(t *testing.T) {
	v := New("test-secret", 2)

	contexts := []string{"a", "b", "c"}
	for _, ctx := range contexts {
		if _, err := v.Encrypt("x", ctx); err != nil {
			t.Fatalf("encrypt %s: %v", ctx, err)
		}
	}

	v.mu.Lock()
	size := len(v.keys)
	_, hasOldest := v.keys["a"]
	v.mu.Unlock()

	if size != 2 {
		t.Fatalf("cache size = %d, want 2", size)
	}
	if hasOldest {
		t.Fatal("oldest key should have been evicted")
	}

	// Eviction never affects correctness, only re-derivation cost.
	ct, err := v.Encrypt("still works", "a")
	if err != nil {
		t.Fatalf("encrypt after eviction: %v", err)
	}
	pt, err := v.Decrypt(ct, "a")
	if err != nil || pt != "still works" {
		t.Fatalf("decrypt after eviction: %q, %v", pt, err)
	}
}

func TestEvict(t *testing.T) {
	v := New("test-secret", 8)

	if _, err := v.Encrypt("x", "ctx"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	v.Evict()

	v.mu.Lock()
	size := len(v.keys)
	v.mu.Unlock()
	if size != 0 {
		t.Fatalf("cache size after Evict = %d, want 0", size)
	}
}
