// Package crypto seals export bundles under a passphrase so they can be
// kept off-host without exposing the credential and data they carry.
package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// SealedFormat tags a sealed envelope. It is also the AEAD associated data.
const SealedFormat = "datavault-sealed-v1"

var (
	// ErrNotSealed is returned by Open for input that is not a sealed envelope.
	ErrNotSealed = errors.New("not a sealed bundle")

	// ErrEmptyPassphrase is returned when sealing or opening with no passphrase.
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")
)

// Envelope is the on-disk form of a sealed bundle.
type Envelope struct {
	Format string `json:"format"`
	Salt   string `json:"salt"`
	Data   string `json:"data"`
}

// Seal encrypts plaintext under passphrase and returns the JSON envelope.
func Seal(passphrase, plaintext []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	key, err := bundleKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer wipe(key)

	ct, err := Encrypt(key, plaintext, []byte(SealedFormat))
	if err != nil {
		return nil, fmt.Errorf("sealing bundle: %w", err)
	}
	return json.MarshalIndent(Envelope{
		Format: SealedFormat,
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Data:   base64.StdEncoding.EncodeToString(ct),
	}, "", "  ")
}

// Open decrypts an envelope produced by Seal. A wrong passphrase or a
// modified envelope yields ErrDecrypt.
func Open(passphrase, data []byte) ([]byte, error) {
	env, ok := parseEnvelope(data)
	if !ok {
		return nil, ErrNotSealed
	}
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	key, err := bundleKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer wipe(key)

	return Decrypt(key, ct, []byte(SealedFormat))
}

// IsSealed reports whether data is a sealed envelope.
func IsSealed(data []byte) bool {
	_, ok := parseEnvelope(data)
	return ok
}

func parseEnvelope(data []byte) (Envelope, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Format != SealedFormat {
		return Envelope{}, false
	}
	return env, true
}

func bundleKey(passphrase, salt []byte) ([]byte, error) {
	root := DerivePassphraseKey(passphrase, salt)
	defer wipe(root)
	return DeriveSubkey(root, salt, SealedFormat)
}
