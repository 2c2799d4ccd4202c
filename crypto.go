package fernet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// encryptPayload runs AES-128-CBC with PKCS#7 padding over the payload.
// The returned ciphertext length is always a multiple of the block size.
func encryptPayload(plaintext, iv []byte, key *Key) ([]byte, error) {
	block, err := aes.NewCipher(key.encryption[:])
	if err != nil {
		// Key halves are length-checked at construction, so this only fires
		// when the platform cipher itself is unavailable.
		return nil, fmt.Errorf("cipher unavailable: %w", err)
	}
	padded := padPKCS7(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	wipe(padded)
	return ciphertext, nil
}

// decryptPayload is the inverse of encryptPayload. It must only run after the
// token signature has been verified: decrypting unauthenticated ciphertext
// would leak padding validity to an attacker.
func decryptPayload(ciphertext, iv []byte, key *Key) ([]byte, error) {
	block, err := aes.NewCipher(key.encryption[:])
	if err != nil {
		return nil, fmt.Errorf("cipher unavailable: %w", err)
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
	plaintext, err := unpadPKCS7(padded)
	if err != nil {
		wipe(padded)
		return nil, err
	}
	out := make([]byte, len(plaintext))
	copy(out, plaintext)
	wipe(padded)
	return out, nil
}

// computeSignature returns the HMAC-SHA256 of
// version ‖ timestamp(8, big-endian) ‖ iv ‖ ciphertext. The framing is
// byte-exact across fernet implementations and must never change.
func computeSignature(timestamp uint64, iv, ciphertext []byte, key *Key) []byte {
	var header [headerSize]byte
	header[0] = tokenVersion
	binary.BigEndian.PutUint64(header[1:9], timestamp)
	copy(header[9:], iv)

	mac := hmac.New(sha256.New, key.signing[:])
	mac.Write(header[:])
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

func padPKCS7(b []byte) []byte {
	padLen := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+padLen)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func unpadPKCS7(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, ErrMalformedToken
	}
	padLen := int(b[len(b)-1])
	if padLen < 1 || padLen > blockSize {
		return nil, ErrMalformedToken
	}
	for _, p := range b[len(b)-padLen:] {
		if p != byte(padLen) {
			return nil, ErrMalformedToken
		}
	}
	return b[:len(b)-padLen], nil
}

// constantTimeEqual never short-circuits, regardless of where inputs differ.
func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
