package fernet

import (
	"crypto/rand"
	"io"
	"time"
)

// Validator encapsulates the acceptance policy for tokens: how old a token
// may be, how far ahead of the local clock its timestamp may sit, which
// clock and entropy source to use, and an optional payload check applied
// after decryption. The zero TTL disables the expiry check entirely.
type Validator struct {
	ttl   time.Duration
	skew  time.Duration
	nowFn func() time.Time
	rand  io.Reader
	check func([]byte) error
}

// Option customizes a Validator. Encrypt shares the same options for its
// clock and entropy source.
type Option func(*Validator)

// WithTTL sets the maximum accepted token age. Zero or negative disables
// the expiry check.
func WithTTL(ttl time.Duration) Option {
	return func(v *Validator) {
		if ttl < 0 {
			ttl = 0
		}
		v.ttl = ttl
	}
}

// WithClockSkew sets the tolerance for timestamps slightly in the future.
func WithClockSkew(skew time.Duration) Option {
	return func(v *Validator) {
		if skew >= 0 {
			v.skew = skew
		}
	}
}

// WithNow injects a deterministic clock source (useful for tests).
func WithNow(fn func() time.Time) Option {
	return func(v *Validator) {
		if fn != nil {
			v.nowFn = fn
		}
	}
}

// WithRandom injects the entropy source used for IV generation.
func WithRandom(r io.Reader) Option {
	return func(v *Validator) {
		if r != nil {
			v.rand = r
		}
	}
}

// WithPayloadCheck installs a predicate over the decrypted payload. When it
// returns an error the token is rejected with ErrPayloadRejected; the
// rejected content is never included in the error.
func WithPayloadCheck(fn func([]byte) error) Option {
	return func(v *Validator) {
		v.check = fn
	}
}

func defaultNow() time.Time { return time.Now().UTC() }

func newValidator(ttl time.Duration, opts ...Option) *Validator {
	v := &Validator{
		ttl:   ttl,
		skew:  DefaultClockSkew,
		nowFn: defaultNow,
		rand:  rand.Reader,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// NewValidator builds a Validator with DefaultTTL and DefaultClockSkew,
// adjusted by the given options.
func NewValidator(opts ...Option) *Validator {
	return newValidator(DefaultTTL, opts...)
}

// Validate runs the acceptance sequence over a parsed token. The checks are
// ordered deliberately and each failure is terminal: version first, then the
// time window (cheap, reveals nothing about the key), then the signature,
// and only once authenticity is established does the ciphertext reach the
// padding-sensitive decrypt path. The payload check, if any, runs last.
func (v *Validator) Validate(t *Token, key *Key) ([]byte, error) {
	if t == nil || key == nil {
		return nil, ErrMalformedToken
	}
	if t.Version != tokenVersion {
		return nil, ErrUnsupportedVersion
	}
	now := v.nowFn()
	if v.ttl > 0 && !t.Timestamp.After(now.Add(-v.ttl)) {
		return nil, ErrTokenExpired
	}
	if !t.Timestamp.Before(now.Add(v.skew)) {
		return nil, ErrClockSkew
	}
	if !t.SignedBy(key) {
		return nil, ErrInvalidSignature
	}
	plaintext, err := decryptPayload(t.Ciphertext, t.IV, key)
	if err != nil {
		return nil, err
	}
	if v.check != nil {
		if err := v.check(plaintext); err != nil {
			wipe(plaintext)
			return nil, ErrPayloadRejected
		}
	}
	return plaintext, nil
}

// ValidateString parses token text and runs Validate.
func (v *Validator) ValidateString(encoded string, key *Key) ([]byte, error) {
	t, err := Parse(encoded)
	if err != nil {
		return nil, err
	}
	return v.Validate(t, key)
}

// Encrypt seals payload under key and returns the encoded token text.
// WithNow and WithRandom pin the timestamp and IV for reproducible output.
func Encrypt(key *Key, payload []byte, opts ...Option) (string, error) {
	if key == nil {
		return "", ErrInvalidKey
	}
	cfg := newValidator(0, opts...)
	t, err := newToken(payload, key, cfg.nowFn(), cfg.rand)
	if err != nil {
		return "", err
	}
	return t.Serialize(), nil
}

// Decrypt verifies and opens token text under key. TTL checking is disabled
// unless WithTTL is supplied; clock skew is always enforced.
func Decrypt(key *Key, encoded string, opts ...Option) ([]byte, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}
	return newValidator(0, opts...).ValidateString(encoded, key)
}

// Verify runs the full acceptance sequence and discards the payload.
func Verify(key *Key, encoded string, opts ...Option) error {
	plaintext, err := Decrypt(key, encoded, opts...)
	wipe(plaintext)
	return err
}

// IsValid reports whether the token passes all checks under key.
func IsValid(key *Key, encoded string, opts ...Option) bool {
	return Verify(key, encoded, opts...) == nil
}
