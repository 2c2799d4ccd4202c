package fernet_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/oarkflow/fernet"
)

func TestGenerateKeyInEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("APP_ENV=production\nFERNET_KEY=stale\n"), 0600); err != nil {
		t.Fatal(err)
	}

	key, err := fernet.GenerateKeyInEnvFile(path, "FERNET_KEY")
	if err != nil {
		t.Fatalf("GenerateKeyInEnvFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "APP_ENV=production") {
		t.Fatalf("unrelated entries were lost:\n%s", content)
	}
	if strings.Contains(string(content), "FERNET_KEY=stale") {
		t.Fatalf("stale entry survived:\n%s", content)
	}

	var stored string
	for _, line := range strings.Split(string(content), "\n") {
		if rest, ok := strings.CutPrefix(line, "FERNET_KEY="); ok {
			stored = rest
		}
	}
	parsed, err := fernet.KeyFromString(stored)
	if err != nil {
		t.Fatalf("stored key does not parse: %v", err)
	}
	if !parsed.Equal(key) {
		t.Fatalf("stored key differs from the returned key")
	}
}

func TestGenerateKeyInJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"port": 8080}`), 0600); err != nil {
		t.Fatal(err)
	}

	key, err := fernet.GenerateKeyInJSONFile(path, "fernet_key")
	if err != nil {
		t.Fatalf("GenerateKeyInJSONFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if data["port"] != float64(8080) {
		t.Fatalf("unrelated entries were lost: %v", data)
	}
	stored, _ := data["fernet_key"].(string)
	parsed, err := fernet.KeyFromString(stored)
	if err != nil {
		t.Fatalf("stored key does not parse: %v", err)
	}
	if !parsed.Equal(key) {
		t.Fatalf("stored key differs from the returned key")
	}
}

func TestGenerateKeyInYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	key, err := fernet.GenerateKeyInYAMLFile(path, "fernet_key")
	if err != nil {
		t.Fatalf("GenerateKeyInYAMLFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		t.Fatalf("file is not valid YAML: %v", err)
	}
	stored, _ := data["fernet_key"].(string)
	parsed, err := fernet.KeyFromString(stored)
	if err != nil {
		t.Fatalf("stored key does not parse: %v", err)
	}
	if !parsed.Equal(key) {
		t.Fatalf("stored key differs from the returned key")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("key file permissions = %o, want 0600", perm)
	}
}

func TestSetKeyRejectsNilKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := fernet.SetKeyInEnvFile(path, "FERNET_KEY", nil); err != fernet.ErrInvalidKey {
		t.Fatalf("nil key accepted: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file was created for a nil key")
	}
}
