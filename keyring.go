package fernet

import (
	"errors"

	"github.com/oarkflow/shamir"
)

// Ring is an ordered, non-empty collection of keys supporting
// decrypt-by-any-key and rotate-to-primary semantics. The head key is the
// primary; only it produces new tokens. A Ring is immutable: mutating
// operations return a new Ring value, so a Ring may be shared across
// goroutines freely.
type Ring struct {
	keys []*Key
}

// NewRing builds a Ring from one or more keys, primary first.
func NewRing(keys ...*Key) (*Ring, error) {
	if len(keys) == 0 {
		return nil, errors.New("ring requires at least one key")
	}
	for _, k := range keys {
		if k == nil {
			return nil, ErrInvalidKey
		}
	}
	return &Ring{keys: append([]*Key(nil), keys...)}, nil
}

// Primary returns the encryption key at the head of the ring.
func (r *Ring) Primary() *Key { return r.keys[0] }

// Len returns the number of keys in the ring.
func (r *Ring) Len() int { return len(r.keys) }

// Keys returns a copy of the ring's key order.
func (r *Ring) Keys() []*Key { return append([]*Key(nil), r.keys...) }

// Encrypt seals payload under the primary key only.
func (r *Ring) Encrypt(payload []byte, opts ...Option) (string, error) {
	return Encrypt(r.keys[0], payload, opts...)
}

// Decrypt tries each key in ring order and returns the first accepted
// payload. Every failure, structural or cryptographic, collapses into the
// single ErrNoValidKey: the caller must not learn which keys were tried, nor
// how close any of them came to working.
func (r *Ring) Decrypt(encoded string, opts ...Option) ([]byte, error) {
	t, err := Parse(encoded)
	if err != nil {
		return nil, ErrNoValidKey
	}
	v := newValidator(0, opts...)
	for _, k := range r.keys {
		if plaintext, err := v.Validate(t, k); err == nil {
			return plaintext, nil
		}
	}
	return nil, ErrNoValidKey
}

// Verify runs Decrypt and discards the payload.
func (r *Ring) Verify(encoded string, opts ...Option) error {
	plaintext, err := r.Decrypt(encoded, opts...)
	wipe(plaintext)
	return err
}

// Rotate re-encrypts a token accepted by any ring key under the primary key,
// so tokens issued before a key change keep working after the old key is
// eventually dropped. If no key accepts the token the Decrypt failure is
// returned unchanged.
func (r *Ring) Rotate(encoded string, opts ...Option) (string, error) {
	plaintext, err := r.Decrypt(encoded, opts...)
	if err != nil {
		return "", err
	}
	rotated, err := Encrypt(r.keys[0], plaintext, opts...)
	wipe(plaintext)
	return rotated, err
}

// AddKey returns a new Ring with k appended after the existing keys.
func (r *Ring) AddKey(k *Key) (*Ring, error) {
	if k == nil {
		return nil, ErrInvalidKey
	}
	keys := append(append([]*Key(nil), r.keys...), k)
	return &Ring{keys: keys}, nil
}

// SetPrimary returns a new Ring with k at the head. A key already in the
// ring is moved to the front; an unknown key is inserted there.
func (r *Ring) SetPrimary(k *Key) (*Ring, error) {
	if k == nil {
		return nil, ErrInvalidKey
	}
	keys := make([]*Key, 0, len(r.keys)+1)
	keys = append(keys, k)
	for _, existing := range r.keys {
		if !existing.Equal(k) {
			keys = append(keys, existing)
		}
	}
	return &Ring{keys: keys}, nil
}

// RemoveKey returns a new Ring without k. Removing the only remaining key
// fails with ErrLastKey rather than producing an empty ring; a key that is
// not in the ring leaves it unchanged.
func (r *Ring) RemoveKey(k *Key) (*Ring, error) {
	if k == nil {
		return nil, ErrInvalidKey
	}
	keys := make([]*Key, 0, len(r.keys))
	for _, existing := range r.keys {
		if !existing.Equal(k) {
			keys = append(keys, existing)
		}
	}
	if len(keys) == 0 {
		return nil, ErrLastKey
	}
	return &Ring{keys: keys}, nil
}

// SplitPrimary escrows the primary key as Shamir shares: any threshold of
// the returned shares reconstructs the key, fewer reveal nothing.
func (r *Ring) SplitPrimary(shares, threshold int) ([][]byte, error) {
	raw := r.keys[0].Bytes()
	out, err := shamir.Split(raw, threshold, shares)
	wipe(raw)
	return out, err
}

// KeyFromShares reconstructs a Key from Shamir shares produced by
// SplitPrimary.
func KeyFromShares(shares [][]byte) (*Key, error) {
	raw, err := shamir.Combine(shares)
	if err != nil {
		return nil, err
	}
	if len(raw) != KeySize {
		wipe(raw)
		return nil, ErrInvalidKey
	}
	k, err := NewKey(raw[:signingKeySize], raw[signingKeySize:])
	wipe(raw)
	return k, err
}
