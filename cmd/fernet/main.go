package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/oarkflow/fernet"
)

const (
	version = "1.0.0"
)

var ttlUnitMultipliers = map[string]time.Duration{
	"":        time.Second,
	"s":       time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"second":  time.Second,
	"seconds": time.Second,
	"m":       time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"h":       time.Hour,
	"hr":      time.Hour,
	"hrs":     time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"d":       24 * time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
}

type Config struct {
	KeyInput        string
	KeysInput       string
	Payload         string
	TokenInput      string
	RotateInput     string
	TTLInput        string
	TTL             time.Duration
	GenerateKey     bool
	Verbose         bool
	ShowVersion     bool
	CopyToClipboard bool

	key  *fernet.Key
	ring *fernet.Ring
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("fernet v%s\n", version)
		os.Exit(0)
	}

	if err := validateConfig(config); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	switch {
	case config.GenerateKey:
		key, err := fernet.GenerateKey()
		if err != nil {
			log.Fatalf("Key generation failed: %v", err)
		}
		if err := deliver(config, key.String(), "key"); err != nil {
			log.Fatalf("Key generation failed: %v", err)
		}
	case config.Payload != "":
		token, err := processEncryption(config)
		if err != nil {
			log.Fatalf("Token encryption failed: %v", err)
		}
		if err := deliver(config, token, "token"); err != nil {
			log.Fatalf("Token encryption failed: %v", err)
		}
	case config.TokenInput != "":
		payload, err := processDecryption(config)
		if err != nil {
			log.Fatalf("Token decryption failed: %v", err)
		}
		if err := deliver(config, payload, "payload"); err != nil {
			log.Fatalf("Token decryption failed: %v", err)
		}
	case config.RotateInput != "":
		rotated, err := processRotation(config)
		if err != nil {
			log.Fatalf("Token rotation failed: %v", err)
		}
		if err := deliver(config, rotated, "token"); err != nil {
			log.Fatalf("Token rotation failed: %v", err)
		}
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.KeyInput, "key", "", "Key text (44-character URL-safe base64)")
	flag.StringVar(&config.KeyInput, "k", "", "Key text (shorthand)")
	flag.StringVar(&config.KeysInput, "keys", "", "Comma-separated key ring, primary first (decrypt/rotate)")
	flag.StringVar(&config.Payload, "encrypt", "", "Payload to encrypt into a token")
	flag.StringVar(&config.Payload, "e", "", "Payload to encrypt into a token (shorthand)")
	flag.StringVar(&config.TokenInput, "decrypt", "", "Token to decrypt")
	flag.StringVar(&config.TokenInput, "d", "", "Token to decrypt (shorthand)")
	flag.StringVar(&config.RotateInput, "rotate", "", "Token to re-encrypt under the primary ring key")
	flag.StringVar(&config.TTLInput, "ttl", "", "Accepted token age, e.g. 60, 90s, 5min, 2h, 1d (decrypt/rotate)")
	flag.BoolVar(&config.GenerateKey, "gen-key", false, "Generate a fresh key")
	flag.BoolVar(&config.Verbose, "verbose", true, "Enable verbose output")
	flag.BoolVar(&config.Verbose, "v", true, "Enable verbose output (shorthand)")
	flag.BoolVar(&config.CopyToClipboard, "copy", false, "Copy the result to the clipboard instead of printing")
	flag.BoolVar(&config.CopyToClipboard, "c", false, "Copy the result to the clipboard (shorthand)")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fernet v%s - Encrypt, decrypt and rotate fernet tokens\n\n", version)
		fmt.Fprintf(os.Stderr, "USAGE:\n")
		fmt.Fprintf(os.Stderr, "  fernet -gen-key\n")
		fmt.Fprintf(os.Stderr, "  fernet -k <key> -encrypt <payload>\n")
		fmt.Fprintf(os.Stderr, "  fernet -k <key> -decrypt <token> [-ttl 5min]\n")
		fmt.Fprintf(os.Stderr, "  fernet -keys <new>,<old> -rotate <token>\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	config.ShowVersion = *showVersion

	return config
}

func validateConfig(config *Config) error {
	actions := 0
	for _, active := range []bool{
		config.GenerateKey,
		config.Payload != "",
		config.TokenInput != "",
		config.RotateInput != "",
	} {
		if active {
			actions++
		}
	}
	if actions == 0 {
		return fmt.Errorf("one of -gen-key, -encrypt, -decrypt or -rotate is required")
	}
	if actions > 1 {
		return fmt.Errorf("-gen-key, -encrypt, -decrypt and -rotate are mutually exclusive")
	}

	if config.TTLInput != "" {
		ttl, err := parseTTL(config.TTLInput)
		if err != nil {
			return err
		}
		config.TTL = ttl
	}

	if config.GenerateKey {
		return nil
	}

	if config.KeyInput == "" && config.KeysInput == "" {
		return fmt.Errorf("a key is required (-key or -keys)")
	}

	var keys []*fernet.Key
	inputs := []string{}
	if config.KeyInput != "" {
		inputs = append(inputs, config.KeyInput)
	}
	for _, part := range strings.Split(config.KeysInput, ",") {
		if part = strings.TrimSpace(part); part != "" {
			inputs = append(inputs, part)
		}
	}
	for _, input := range inputs {
		key, err := fernet.KeyFromString(input)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", abbreviate(input), err)
		}
		keys = append(keys, key)
	}

	config.key = keys[0]
	ring, err := fernet.NewRing(keys...)
	if err != nil {
		return err
	}
	config.ring = ring

	return nil
}

// parseTTL accepts a bare number of seconds or a number with a human unit
// suffix such as 90s, 5min, 2h or 1d.
func parseTTL(input string) (time.Duration, error) {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	split := len(trimmed)
	for i, r := range trimmed {
		if r < '0' || r > '9' {
			split = i
			break
		}
	}
	if split == 0 {
		return 0, fmt.Errorf("invalid TTL %q", input)
	}
	amount, err := strconv.Atoi(trimmed[:split])
	if err != nil || amount < 0 {
		return 0, fmt.Errorf("invalid TTL %q", input)
	}
	unit, ok := ttlUnitMultipliers[strings.TrimSpace(trimmed[split:])]
	if !ok {
		return 0, fmt.Errorf("invalid TTL unit in %q", input)
	}
	return time.Duration(amount) * unit, nil
}

func processEncryption(config *Config) (string, error) {
	return fernet.Encrypt(config.key, []byte(config.Payload))
}

func processDecryption(config *Config) (string, error) {
	var opts []fernet.Option
	if config.TTL > 0 {
		opts = append(opts, fernet.WithTTL(config.TTL))
	}
	payload, err := config.ring.Decrypt(config.TokenInput, opts...)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func processRotation(config *Config) (string, error) {
	var opts []fernet.Option
	if config.TTL > 0 {
		opts = append(opts, fernet.WithTTL(config.TTL))
	}
	return config.ring.Rotate(config.RotateInput, opts...)
}

func deliver(config *Config, value, kind string) error {
	if config.CopyToClipboard {
		if err := clipboard.WriteAll(value); err != nil {
			return fmt.Errorf("failed to copy %s to clipboard: %w", kind, err)
		}
		if config.Verbose {
			fmt.Printf("✓ %s copied to clipboard [len=%d]\n", kind, len(value))
		}
		return nil
	}
	fmt.Println(value)
	return nil
}

func abbreviate(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8] + "…"
}
