// Package vault encrypts third-party calendar credentials at rest.
// Plaintext only exists inside a fetch call; everything persisted goes
// through Encrypt first.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/scrypt"
)

const keyLen = 32

// Vault derives one AES-256-GCM key per context string from the process
// secret. Derived keys are cached in a size-bounded map owned by the
// vault instance; the cache is an optimization only and can be dropped
// with Evict at any time.
type Vault struct {
	secret []byte

	mu      sync.Mutex
	keys    map[string][]byte
	order   []string
	maxKeys int
}

func New(secret string, maxKeys int) *Vault {
	if maxKeys <= 0 {
		maxKeys = 128
	}
	return &Vault{
		secret:  []byte(secret),
		keys:    make(map[string][]byte),
		maxKeys: maxKeys,
	}
}

// Encrypt seals plaintext under the key derived for context. Output is
// base64(nonce || ciphertext).
func (v *Vault) Encrypt(plaintext, context string) (string, error) {
	gcm, err := v.aead(context)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt; the same context must be supplied.
func (v *Vault) Decrypt(ciphertext, context string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	gcm, err := v.aead(context)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}

	return string(plaintext), nil
}

// Evict clears the derived-key cache.
func (v *Vault) Evict() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.keys = make(map[string][]byte)
	v.order = nil
}

func (v *Vault) aead(context string) (cipher.AEAD, error) {
	key, err := v.deriveKey(context)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return gcm, nil
}

func (v *Vault) deriveKey(context string) ([]byte, error) {
	v.mu.Lock()
	if key, ok := v.keys[context]; ok {
		v.mu.Unlock()
		return key, nil
	}
	v.mu.Unlock()

	// scrypt is deliberately slow; the derivation runs outside the lock.
	key, err := scrypt.Key(v.secret, []byte(context), 1<<15, 8, 1, keyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.order) >= v.maxKeys {
		oldest := v.order[0]
		v.order = v.order[1:]
		delete(v.keys, oldest)
	}

	if _, ok := v.keys[context]; !ok {
		v.keys[context] = key
		v.order = append(v.order, context)
	}

	return key, nil
}
