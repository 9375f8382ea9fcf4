package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const encryptionInfo = "aicharacters client state v1"

// ErrDecrypt is returned when a stored value cannot be authenticated
var ErrDecrypt = errors.New("stored value could not be decrypted")

// Encrypted seals every value with XChaCha20-Poly1305 before it reaches the
// wrapped store. The key name is bound as additional data so values cannot
// be swapped between keys.
type Encrypted struct {
	inner Store
	aead  cipher.AEAD
}

// NewEncrypted derives a key from secret and wraps inner
func NewEncrypted(inner Store, secret string) (*Encrypted, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is empty")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(encryptionInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &Encrypted{inner: inner, aead: aead}, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := e.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < e.aead.NonceSize()+e.aead.Overhead() {
		return "", false, fmt.Errorf("%w: %s", ErrDecrypt, key)
	}

	nonce, ciphertext := raw[:e.aead.NonceSize()], raw[e.aead.NonceSize():]
	plain, err := e.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrDecrypt, key)
	}
	return string(plain), true, nil
}

func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(value)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return e.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}

func (e *Encrypted) Close() error {
	return e.inner.Close()
}

// Ping forwards to the wrapped store when it can check connectivity
func (e *Encrypted) Ping(ctx context.Context) error {
	if p, ok := e.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
