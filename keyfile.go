package fernet

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Key-to-config-file plumbing: store a key's text form under a name in the
// configuration formats deployments actually keep secrets in. The library
// core never reads these files back; KeyFromString handles that end.

// SetKeyInEnvFile writes key under name in a dotenv-style file, replacing an
// existing entry or appending a new one. The file is created if missing.
func SetKeyInEnvFile(filePath, name string, key *Key) error {
	if key == nil {
		return ErrInvalidKey
	}
	content, err := os.ReadFile(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read file: %w", err)
	}

	lines := strings.Split(string(content), "\n")
	keyFound := false
	keyPattern := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `=`)

	for i, line := range lines {
		if keyPattern.MatchString(line) {
			lines[i] = fmt.Sprintf("%s=%s", name, key.String())
			keyFound = true
			break
		}
	}

	if !keyFound {
		lines = append(lines, fmt.Sprintf("%s=%s", name, key.String()))
	}

	return os.WriteFile(filePath, []byte(strings.Join(lines, "\n")), 0600)
}

// SetKeyInJSONFile writes key under name in a JSON object file.
func SetKeyInJSONFile(filePath, name string, key *Key) error {
	if key == nil {
		return ErrInvalidKey
	}
	content, err := os.ReadFile(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data map[string]any
	if len(content) > 0 {
		if err := json.Unmarshal(content, &data); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	} else {
		data = make(map[string]any)
	}

	data[name] = key.String()

	updated, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return os.WriteFile(filePath, updated, 0600)
}

// SetKeyInYAMLFile writes key under name in a YAML mapping file.
func SetKeyInYAMLFile(filePath, name string, key *Key) error {
	if key == nil {
		return ErrInvalidKey
	}
	content, err := os.ReadFile(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data map[string]any
	if len(content) > 0 {
		if err := yaml.Unmarshal(content, &data); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	} else {
		data = make(map[string]any)
	}

	data[name] = key.String()

	updated, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	return os.WriteFile(filePath, updated, 0600)
}

// GenerateKeyInEnvFile generates a fresh key, stores it in a dotenv file and
// returns it.
func GenerateKeyInEnvFile(filePath, name string) (*Key, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, SetKeyInEnvFile(filePath, name, key)
}

// GenerateKeyInJSONFile generates a fresh key, stores it in a JSON file and
// returns it.
func GenerateKeyInJSONFile(filePath, name string) (*Key, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, SetKeyInJSONFile(filePath, name, key)
}

// GenerateKeyInYAMLFile generates a fresh key, stores it in a YAML file and
// returns it.
func GenerateKeyInYAMLFile(filePath, name string) (*Key, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, SetKeyInYAMLFile(filePath, name, key)
}
