package fernet

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key wraps the two 16-byte halves of a fernet key for extra safety: the
// signing half authenticates tokens, the encryption half encrypts payloads.
// A Key is immutable once constructed and safe for concurrent use.
type Key struct {
	signing    [signingKeySize]byte
	encryption [encryptionKeySize]byte
}

// NewKey is a constructor-like function building a Key from raw halves.
// Both halves must be exactly 16 bytes; no partial key is ever constructed.
func NewKey(signing, encryption []byte) (*Key, error) {
	if len(signing) != signingKeySize || len(encryption) != encryptionKeySize {
		return nil, ErrInvalidKey
	}
	k := &Key{}
	copy(k.signing[:], signing)
	copy(k.encryption[:], encryption)
	return k, nil
}

// GenerateKey returns a fresh random Key using crypto/rand.
func GenerateKey() (*Key, error) {
	return GenerateKeyFrom(rand.Reader)
}

// GenerateKeyFrom fills a new Key from the given entropy source.
// Passing a deterministic reader is useful for tests.
func GenerateKeyFrom(r io.Reader) (*Key, error) {
	if r == nil {
		r = rand.Reader
	}
	var raw [KeySize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, err
	}
	k, err := NewKey(raw[:signingKeySize], raw[signingKeySize:])
	wipe(raw[:])
	return k, err
}

// KeyFromString decodes the 44-character URL-safe base64 text form of a key:
// 16 signing bytes followed by 16 encryption bytes. Malformed base64 and any
// decoded length other than 32 are both reported as ErrInvalidKey.
func KeyFromString(text string) (*Key, error) {
	raw, err := base64.URLEncoding.DecodeString(text)
	if err != nil || len(raw) != KeySize {
		return nil, ErrInvalidKey
	}
	k, err := NewKey(raw[:signingKeySize], raw[signingKeySize:])
	wipe(raw)
	return k, err
}

// DeriveKey expands a high-entropy secret into a Key via HKDF-SHA256 with the
// given context info. Derivation is deterministic: the same secret and info
// always produce the same Key. The secret must already be uniformly random
// key material; this is not a password hashing scheme.
func DeriveKey(secret, info []byte) (*Key, error) {
	if len(secret) == 0 {
		return nil, errors.New("derivation secret required")
	}
	var raw [KeySize]byte
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, info), raw[:]); err != nil {
		return nil, err
	}
	k, err := NewKey(raw[:signingKeySize], raw[signingKeySize:])
	wipe(raw[:])
	return k, err
}

// String returns the key's text form: URL-safe base64 of
// signing ‖ encryption, always 44 characters.
func (k *Key) String() string {
	var raw [KeySize]byte
	copy(raw[:], k.signing[:])
	copy(raw[signingKeySize:], k.encryption[:])
	out := base64.URLEncoding.EncodeToString(raw[:])
	wipe(raw[:])
	return out
}

// Bytes returns a copy of the raw 32-byte key material.
func (k *Key) Bytes() []byte {
	raw := make([]byte, KeySize)
	copy(raw, k.signing[:])
	copy(raw[signingKeySize:], k.encryption[:])
	return raw
}

// Equal reports whether two keys hold identical material, in constant time.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	s := constantTimeEqual(k.signing[:], other.signing[:])
	e := constantTimeEqual(k.encryption[:], other.encryption[:])
	return s && e
}
