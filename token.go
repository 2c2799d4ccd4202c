package fernet

import (
	"encoding/base64"
	"encoding/binary"
	"io"
	"time"
)

// Token is the in-memory form of the wire layout:
//
//	version(1) ‖ timestamp(8, big-endian seconds) ‖ iv(16) ‖ ciphertext ‖ signature(32)
//
// A Token obtained from Parse is structurally valid only. Nothing in it can
// be trusted until a Validator accepts it.
type Token struct {
	Version    byte
	Timestamp  time.Time
	IV         []byte
	Ciphertext []byte
	Signature  []byte
}

// newToken encrypts payload and assembles a signed token at the given
// instant, drawing the IV from r.
func newToken(payload []byte, key *Key, now time.Time, r io.Reader) (*Token, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(r, iv); err != nil {
		return nil, err
	}
	ciphertext, err := encryptPayload(payload, iv, key)
	if err != nil {
		return nil, err
	}
	ts := now.UTC().Truncate(time.Second)
	return &Token{
		Version:    tokenVersion,
		Timestamp:  ts,
		IV:         iv,
		Ciphertext: ciphertext,
		Signature:  computeSignature(uint64(ts.Unix()), iv, ciphertext, key),
	}, nil
}

// Serialize encodes the token into its padded URL-safe base64 text form.
// Serialization is deterministic.
func (t *Token) Serialize() string {
	ptr := acquireBuffer()
	buf := *ptr
	buf = append(buf, t.Version)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(t.Timestamp.Unix()))
	buf = append(buf, ts[:]...)
	buf = append(buf, t.IV...)
	buf = append(buf, t.Ciphertext...)
	buf = append(buf, t.Signature...)
	out := base64.URLEncoding.EncodeToString(buf)
	*ptr = buf
	releaseBuffer(ptr)
	return out
}

// Parse decodes token text and splits it into fields. It enforces structure
// only: decodable base64, minimum length, whole cipher blocks, no surplus
// bytes after the signature. Every structural failure is ErrMalformedToken.
func Parse(encoded string) (*Token, error) {
	if len(encoded) > maxTokenSize {
		return nil, ErrMalformedToken
	}
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformedToken
	}
	if len(raw) < minTokenSize {
		return nil, ErrMalformedToken
	}
	ctLen := len(raw) - headerSize - signatureSize
	if ctLen%blockSize != 0 {
		return nil, ErrMalformedToken
	}

	t := &Token{
		Version:    raw[0],
		Timestamp:  time.Unix(int64(binary.BigEndian.Uint64(raw[1:9])), 0).UTC(),
		IV:         append([]byte(nil), raw[9:headerSize]...),
		Ciphertext: append([]byte(nil), raw[headerSize:headerSize+ctLen]...),
		Signature:  append([]byte(nil), raw[headerSize+ctLen:]...),
	}
	wipe(raw)
	return t, nil
}

// SignedBy recomputes the signature over the token's fields under key and
// compares it to the stored signature without short-circuiting.
func (t *Token) SignedBy(key *Key) bool {
	expected := computeSignature(uint64(t.Timestamp.Unix()), t.IV, t.Ciphertext, key)
	ok := constantTimeEqual(expected, t.Signature)
	wipe(expected)
	return ok
}
