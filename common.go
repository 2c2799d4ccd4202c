package fernet

import (
	"errors"
	"time"
)

// ErrInvalidKey is returned when key text cannot be decoded into exactly
// 32 bytes of URL-safe base64, or when raw key halves have the wrong length.
var ErrInvalidKey = errors.New("invalid key format")

// ErrMalformedToken indicates that obtained token was not properly formed.
var ErrMalformedToken = errors.New("token is malformed")

// ErrUnsupportedVersion is returned when the token's leading version byte is
// not the one this implementation produces.
var ErrUnsupportedVersion = errors.New("unsupported token version")

// ErrTokenExpired is returned when the token's embedded timestamp is older
// than the validator's time-to-live window.
var ErrTokenExpired = errors.New("token expired")

// ErrClockSkew is returned when the token's embedded timestamp lies further
// in the future than the allowed clock skew.
var ErrClockSkew = errors.New("token timestamp is too far in the future")

// ErrInvalidSignature is returned when signature is invalid for provided message.
var ErrInvalidSignature = errors.New("invalid token signature")

// ErrPayloadRejected is returned when a caller-supplied payload check rejects
// an otherwise valid token. The rejected plaintext is never echoed back.
var ErrPayloadRejected = errors.New("payload rejected")

// ErrNoValidKey is the single error a Ring reports when no key in the ring
// accepts a token. Which keys were tried, and why each failed, is deliberately
// not revealed.
var ErrNoValidKey = errors.New("no key in the ring accepts this token")

// ErrLastKey is returned when removing a key would leave a Ring empty.
var ErrLastKey = errors.New("cannot remove the last key from the ring")

const (
	// tokenVersion is the only wire version this implementation emits or accepts.
	tokenVersion byte = 0x80

	signingKeySize    = 16
	encryptionKeySize = 16

	// KeySize is the raw length of a full key: signing half followed by
	// encryption half.
	KeySize = signingKeySize + encryptionKeySize

	// EncodedKeySize is the text length of a key: base64url of 32 bytes,
	// including the single trailing padding character.
	EncodedKeySize = 44

	ivSize        = 16
	blockSize     = 16
	signatureSize = 32

	// headerSize covers version byte, big-endian timestamp and IV.
	headerSize = 1 + 8 + ivSize

	// minTokenSize is the smallest possible raw token: header, one cipher
	// block and the signature.
	minTokenSize = headerSize + blockSize + signatureSize

	// maxTokenSize caps the encoded token text accepted by Parse, bounding
	// work before base64 decoding starts.
	maxTokenSize = 8192
)

// DefaultTTL is the time-to-live a Validator applies when the caller does not
// choose one. Plain Decrypt and Verify leave TTL checking disabled instead.
const DefaultTTL = 30 * time.Minute

// DefaultClockSkew allows small clock drift between the token producer and
// this process when checking timestamps.
const DefaultClockSkew = time.Minute
