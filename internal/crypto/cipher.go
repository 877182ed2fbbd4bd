package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const nonceLen = 12

// ErrDecrypt is returned when a ciphertext fails authentication: wrong key,
// wrong associated data, or tampering.
var ErrDecrypt = errors.New("decryption failed")

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aead, nil
}

// Encrypt seals plaintext with AES-256-GCM under a random nonce, binding ad
// as associated data. The result is nonce || ciphertext+tag.
func Encrypt(key, plaintext, ad []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, nonceLen, nonceLen+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return aead.Seal(out, out[:nonceLen], plaintext, ad), nil
}

// Decrypt reverses Encrypt. ad must match what was sealed.
func Decrypt(key, data, ad []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(data) < nonceLen+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	plaintext, err := aead.Open(nil, data[:nonceLen], data[nonceLen:], ad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
