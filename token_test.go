package fernet_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/oarkflow/fernet"
)

func TestParseRejectsMalformedInput(t *testing.T) {
	key := mustKey(t)
	valid, err := fernet.Encrypt(key, []byte("structure"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	raw, err := base64.URLEncoding.DecodeString(valid)
	if err != nil {
		t.Fatalf("token is not valid base64: %v", err)
	}

	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not base64", "%%%%%%%%"},
		{"text fragment", "gAAAAA"},
		{"below minimum size", base64.URLEncoding.EncodeToString(raw[:72])},
		{"ciphertext not block aligned", base64.URLEncoding.EncodeToString(raw[:len(raw)-1])},
		{"trailing garbage", base64.URLEncoding.EncodeToString(append(append([]byte(nil), raw...), 0x00))},
		{"oversized", base64.URLEncoding.EncodeToString(make([]byte, 16384))},
		{"oversized before decoding", strings.Repeat("A", 8448)},
		{"whitespace", valid[:10] + " " + valid[10:]},
	}
	for _, tc := range cases {
		if _, err := fernet.Parse(tc.encoded); !errors.Is(err, fernet.ErrMalformedToken) {
			t.Fatalf("%s: got %v, want ErrMalformedToken", tc.name, err)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	key := mustKey(t)
	encoded, err := fernet.Encrypt(key, []byte("parse me"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	tok, err := fernet.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if tok.Version != 0x80 {
		t.Fatalf("version = %#x, want 0x80", tok.Version)
	}
	if len(tok.IV) != 16 || len(tok.Signature) != 32 {
		t.Fatalf("field sizes iv=%d sig=%d", len(tok.IV), len(tok.Signature))
	}
	if len(tok.Ciphertext)%16 != 0 || len(tok.Ciphertext) == 0 {
		t.Fatalf("ciphertext length %d not block aligned", len(tok.Ciphertext))
	}
	if got := tok.Serialize(); got != encoded {
		t.Fatalf("reserialized token differs:\n got  %s\n want %s", got, encoded)
	}
}

func TestSignedBy(t *testing.T) {
	key := mustKey(t)
	encoded, err := fernet.Encrypt(key, []byte("signed"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	tok, err := fernet.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !tok.SignedBy(key) {
		t.Fatalf("SignedBy false under the issuing key")
	}
	if tok.SignedBy(mustKey(t)) {
		t.Fatalf("SignedBy true under a different key")
	}
	tok.Ciphertext[0] ^= 0x01
	if tok.SignedBy(key) {
		t.Fatalf("SignedBy true after ciphertext mutation")
	}
}

func TestTokenTextIsURLSafe(t *testing.T) {
	key := mustKey(t)
	encoded, err := fernet.Encrypt(key, []byte(strings.Repeat("fernet", 64)))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if strings.ContainsAny(encoded, "+/ \n") {
		t.Fatalf("token text contains non URL-safe characters: %q", encoded)
	}
	if !strings.HasPrefix(encoded, "gAAAAA") {
		t.Fatalf("token text does not start with the version prefix: %q", encoded[:8])
	}
}
