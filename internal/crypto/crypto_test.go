package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func testKey(s string) []byte {
	key := make([]byte, keyLen)
	copy(key, s)
	return key
}

func TestDerivePassphraseKey_Deterministic(t *testing.T) {
	salt := []byte("saltsaltsaltsalt")

	k1 := DerivePassphraseKey([]byte("hunter2"), salt)
	k2 := DerivePassphraseKey([]byte("hunter2"), salt)

	if !bytes.Equal(k1, k2) {
		t.Fatal("same inputs should produce same key")
	}
	if len(k1) != keyLen {
		t.Fatalf("expected %d-byte key, got %d", keyLen, len(k1))
	}
}

func TestDerivePassphraseKey_DifferentSalt(t *testing.T) {
	k1 := DerivePassphraseKey([]byte("hunter2"), []byte("saltsaltsaltsalt"))
	k2 := DerivePassphraseKey([]byte("hunter2"), []byte("tlastlastlastlas"))

	if bytes.Equal(k1, k2) {
		t.Fatal("different salts should produce different keys")
	}
}

func TestDeriveSubkey_DifferentPurposes(t *testing.T) {
	root := testKey("root-key")
	salt := []byte("test-salt")

	k1, err := DeriveSubkey(root, salt, "bundle")
	if err != nil {
		t.Fatal(err)
	}
	k2, err := DeriveSubkey(root, salt, "other")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(k1, k2) {
		t.Fatal("different purposes should produce different subkeys")
	}
}

func TestGenerateSalt_Unique(t *testing.T) {
	s1, err := GenerateSalt()
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := GenerateSalt()
	if len(s1) != saltLen {
		t.Fatalf("expected %d-byte salt, got %d", saltLen, len(s1))
	}
	if bytes.Equal(s1, s2) {
		t.Fatal("two salts should differ")
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	key := testKey("test-key")
	plaintext := []byte(`{"rawData":[]}`)

	ct, err := Encrypt(key, plaintext, []byte("ad"))
	if err != nil {
		t.Fatal(err)
	}
	pt, err := Decrypt(key, ct, []byte("ad"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, pt) {
		t.Fatalf("expected %q, got %q", plaintext, pt)
	}
}

func TestEncrypt_DifferentNonces(t *testing.T) {
	key := testKey("test-key")
	e1, _ := Encrypt(key, []byte("same"), nil)
	e2, _ := Encrypt(key, []byte("same"), nil)
	if bytes.Equal(e1, e2) {
		t.Fatal("two encryptions of same plaintext should differ")
	}
}

func TestDecrypt_Rejects(t *testing.T) {
	key := testKey("key-one")
	ct, _ := Encrypt(key, []byte("secret"), []byte("ad"))

	tampered := bytes.Clone(ct)
	tampered[len(tampered)-1] ^= 0xff

	cases := map[string]struct {
		key, data, ad []byte
	}{
		"tampered":  {key, tampered, []byte("ad")},
		"wrong key": {testKey("key-two"), ct, []byte("ad")},
		"wrong ad":  {key, ct, []byte("other")},
		"too short": {key, ct[:nonceLen], []byte("ad")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decrypt(tc.key, tc.data, tc.ad)
			if !errors.Is(err, ErrDecrypt) {
				t.Fatalf("expected ErrDecrypt, got %v", err)
			}
		})
	}
}

func TestSealOpen_Roundtrip(t *testing.T) {
	plaintext := []byte(`{"metadata":{},"rawData":[{"key":"a","value":1}]}`)

	sealed, err := Seal([]byte("correct horse"), plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(sealed, []byte(`"rawData"`)) {
		t.Fatal("sealed output leaks plaintext")
	}

	var env Envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		t.Fatal(err)
	}
	if env.Format != SealedFormat {
		t.Fatalf("format = %q", env.Format)
	}
	if !IsSealed(sealed) {
		t.Fatal("IsSealed should report true")
	}

	opened, err := Open([]byte("correct horse"), sealed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, opened) {
		t.Fatalf("expected %q, got %q", plaintext, opened)
	}
}

func TestOpen_WrongPassphrase(t *testing.T) {
	sealed, _ := Seal([]byte("right"), []byte("data"))
	_, err := Open([]byte("wrong"), sealed)
	if !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
}

func TestOpen_NotSealed(t *testing.T) {
	for _, in := range []string{``, `[]`, `{"rawData":[]}`, `{"format":"other"}`} {
		if IsSealed([]byte(in)) {
			t.Fatalf("IsSealed(%q) = true", in)
		}
		if _, err := Open([]byte("x"), []byte(in)); !errors.Is(err, ErrNotSealed) {
			t.Fatalf("Open(%q): expected ErrNotSealed, got %v", in, err)
		}
	}
}

func TestSeal_EmptyPassphrase(t *testing.T) {
	if _, err := Seal(nil, []byte("data")); !errors.Is(err, ErrEmptyPassphrase) {
		t.Fatalf("expected ErrEmptyPassphrase, got %v", err)
	}
}
