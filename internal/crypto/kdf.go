package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 1
	keyLen       = 32
	saltLen      = 16
)

// DerivePassphraseKey stretches a passphrase into a 256-bit key with Argon2id.
func DerivePassphraseKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, keyLen)
}

// DeriveSubkey expands a root key into a purpose-bound 256-bit key with
// HKDF-SHA256.
func DeriveSubkey(root, salt []byte, purpose string) ([]byte, error) {
	r := hkdf.New(sha256.New, root, salt, []byte(purpose))
	subkey := make([]byte, keyLen)
	if _, err := io.ReadFull(r, subkey); err != nil {
		return nil, fmt.Errorf("deriving %s key: %w", purpose, err)
	}
	return subkey, nil
}

// GenerateSalt returns saltLen random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
