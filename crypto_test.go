package fernet

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func TestPadPKCS7(t *testing.T) {
	cases := []struct {
		in      int
		wantLen int
		wantPad byte
	}{
		{0, 16, 16},
		{1, 16, 15},
		{15, 16, 1},
		{16, 32, 16},
		{17, 32, 15},
		{31, 32, 1},
	}
	for _, tc := range cases {
		padded := padPKCS7(make([]byte, tc.in))
		if len(padded) != tc.wantLen {
			t.Fatalf("pad(%d): length %d, want %d", tc.in, len(padded), tc.wantLen)
		}
		if got := padded[len(padded)-1]; got != tc.wantPad {
			t.Fatalf("pad(%d): last byte %d, want %d", tc.in, got, tc.wantPad)
		}
		unpadded, err := unpadPKCS7(padded)
		if err != nil {
			t.Fatalf("unpad(pad(%d)) failed: %v", tc.in, err)
		}
		if len(unpadded) != tc.in {
			t.Fatalf("unpad(pad(%d)): length %d", tc.in, len(unpadded))
		}
	}
}

func TestUnpadPKCS7Rejects(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"not block aligned", make([]byte, 15)},
		{"zero pad byte", append(bytes.Repeat([]byte{0xAB}, 15), 0)},
		{"pad byte too large", append(bytes.Repeat([]byte{0xAB}, 15), 17)},
		{"inconsistent padding", append(bytes.Repeat([]byte{0xAB}, 13), 2, 3, 3)},
	}
	for _, tc := range cases {
		if _, err := unpadPKCS7(tc.in); err == nil {
			t.Fatalf("%s: padding accepted", tc.name)
		}
	}
}

func TestComputeSignatureFraming(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	iv := bytes.Repeat([]byte{0x11}, ivSize)
	ciphertext := bytes.Repeat([]byte{0x22}, 2*blockSize)
	const ts = uint64(1700000000)

	got := computeSignature(ts, iv, ciphertext, key)

	// The signed message is version ‖ timestamp ‖ iv ‖ ciphertext.
	msg := make([]byte, 0, headerSize+len(ciphertext))
	msg = append(msg, tokenVersion)
	msg = binary.BigEndian.AppendUint64(msg, ts)
	msg = append(msg, iv...)
	msg = append(msg, ciphertext...)
	mac := hmac.New(sha256.New, key.signing[:])
	mac.Write(msg)
	if want := mac.Sum(nil); !bytes.Equal(got, want) {
		t.Fatalf("signature framing mismatch:\n got  %x\n want %x", got, want)
	}
}

func TestEncryptDecryptPayload(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	iv := bytes.Repeat([]byte{0x33}, ivSize)
	plaintext := []byte("block cipher round trip")

	ciphertext, err := encryptPayload(plaintext, iv, key)
	if err != nil {
		t.Fatalf("encryptPayload failed: %v", err)
	}
	if len(ciphertext)%blockSize != 0 {
		t.Fatalf("ciphertext length %d not block aligned", len(ciphertext))
	}
	if bytes.Contains(ciphertext, plaintext) {
		t.Fatalf("ciphertext contains the plaintext")
	}

	got, err := decryptPayload(ciphertext, iv, key)
	if err != nil {
		t.Fatalf("decryptPayload failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestConstantTimeEqual(t *testing.T) {
	a := bytes.Repeat([]byte{0x55}, signatureSize)
	b := append([]byte(nil), a...)
	if !constantTimeEqual(a, b) {
		t.Fatalf("equal slices compare unequal")
	}
	b[signatureSize-1] ^= 0x01
	if constantTimeEqual(a, b) {
		t.Fatalf("unequal slices compare equal")
	}
	if constantTimeEqual(a, a[:10]) {
		t.Fatalf("slices of different length compare equal")
	}
}

func TestBufferPoolZeroesOnRelease(t *testing.T) {
	ptr := acquireBuffer()
	buf := append(*ptr, []byte("sensitive material")...)
	*ptr = buf
	releaseBuffer(ptr)
	if bytes.Contains(buf[:cap(buf)], []byte("sensitive")) {
		t.Fatalf("released buffer still holds plaintext")
	}
}
