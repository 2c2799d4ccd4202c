package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/oarkflow/fernet"
)

const (
	version = "1.0.0"
)

type Config struct {
	FileType        string
	FilePath        string
	Name            string
	Backup          bool
	Verbose         bool
	ShowVersion     bool
	CopyToClipboard bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("fernet-keygen v%s\n", version)
		os.Exit(0)
	}

	if err := validateConfig(config); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := runKeyGeneration(config); err != nil {
		log.Fatalf("Key generation failed: %v", err)
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.FileType, "type", "", "Configuration file type (env, json, yaml, yml)")
	flag.StringVar(&config.FileType, "t", "", "Configuration file type (env, json, yaml, yml) (shorthand)")
	flag.StringVar(&config.FilePath, "file", "", "Path to configuration file; omit to print the key")
	flag.StringVar(&config.FilePath, "f", "", "Path to configuration file (shorthand)")
	flag.StringVar(&config.Name, "name", "FERNET_KEY", "Name to store the key under")
	flag.StringVar(&config.Name, "n", "FERNET_KEY", "Name to store the key under (shorthand)")
	flag.BoolVar(&config.Backup, "backup", true, "Create backup of original file")
	flag.BoolVar(&config.Backup, "b", true, "Create backup of original file (shorthand)")
	noBackup := flag.Bool("no-backup", false, "Disable backup creation")
	flag.BoolVar(&config.Verbose, "verbose", true, "Enable verbose output")
	flag.BoolVar(&config.Verbose, "v", true, "Enable verbose output (shorthand)")
	flag.BoolVar(&config.CopyToClipboard, "copy", false, "Copy the generated key to the clipboard")
	flag.BoolVar(&config.CopyToClipboard, "c", false, "Copy the generated key to the clipboard (shorthand)")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fernet-keygen v%s - Generate fernet keys and store them in configuration files\n\n", version)
		fmt.Fprintf(os.Stderr, "USAGE:\n")
		fmt.Fprintf(os.Stderr, "  fernet-keygen [-t <type> -f <file>] [options]\n\n")
		fmt.Fprintf(os.Stderr, "EXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  fernet-keygen\n")
		fmt.Fprintf(os.Stderr, "  fernet-keygen -t env -f .env -n FERNET_KEY\n")
		fmt.Fprintf(os.Stderr, "  fernet-keygen -t yaml -f config.yaml -n fernet_key --no-backup\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	config.ShowVersion = *showVersion

	if *noBackup {
		config.Backup = false
	}

	return config
}

func validateConfig(config *Config) error {
	if config.FilePath == "" && config.FileType == "" {
		return nil // print-only mode
	}

	if config.FileType == "" {
		return fmt.Errorf("file type is required when writing to a file (-t flag)")
	}

	if config.FilePath == "" {
		return fmt.Errorf("file path is required when a file type is given (-f flag)")
	}

	if config.Name == "" {
		return fmt.Errorf("key name is required (-n flag)")
	}

	validTypes := map[string]bool{
		"env":  true,
		"json": true,
		"yaml": true,
		"yml":  true,
	}

	if !validTypes[strings.ToLower(config.FileType)] {
		return fmt.Errorf("unsupported file type '%s'. Supported types: env, json, yaml, yml", config.FileType)
	}

	if _, err := os.Stat(config.FilePath); os.IsNotExist(err) {
		if config.Verbose {
			fmt.Printf("Warning: File '%s' does not exist, it will be created\n", config.FilePath)
		}
	}

	return nil
}

func runKeyGeneration(config *Config) error {
	if config.FilePath == "" {
		key, err := fernet.GenerateKey()
		if err != nil {
			return err
		}
		return deliverKey(config, key.String(), true)
	}

	if config.Backup {
		if err := createBackup(config.FilePath); err != nil {
			if config.Verbose {
				fmt.Printf("Warning: Failed to create backup: %v\n", err)
			}
		} else if config.Verbose {
			fmt.Printf("✓ Created backup: %s.bak\n", config.FilePath)
		}
	}

	var key *fernet.Key
	var err error

	switch strings.ToLower(config.FileType) {
	case "env":
		key, err = fernet.GenerateKeyInEnvFile(config.FilePath, config.Name)
	case "json":
		key, err = fernet.GenerateKeyInJSONFile(config.FilePath, config.Name)
	case "yaml", "yml":
		key, err = fernet.GenerateKeyInYAMLFile(config.FilePath, config.Name)
	default:
		return fmt.Errorf("unsupported file type: %s", config.FileType)
	}

	if err != nil {
		return fmt.Errorf("failed to update %s file: %w", config.FileType, err)
	}

	if config.Verbose {
		fmt.Printf("✓ Successfully generated and set key '%s' in %s\n", config.Name, config.FilePath)
	}

	return deliverKey(config, key.String(), false)
}

func deliverKey(config *Config, keyText string, printKey bool) error {
	if config.CopyToClipboard {
		if err := clipboard.WriteAll(keyText); err != nil {
			return fmt.Errorf("failed to copy key to clipboard: %w", err)
		}
		if config.Verbose {
			fmt.Printf("✓ Key copied to clipboard [len=%d]\n", len(keyText))
		}
		return nil
	}
	if printKey {
		fmt.Println(keyText)
	}
	return nil
}

func createBackup(filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil // No backup needed for non-existent files
	}

	backupPath := filePath + ".bak"

	if _, err := os.Stat(backupPath); err == nil {
		if err := os.Remove(backupPath); err != nil {
			return fmt.Errorf("failed to remove old backup: %w", err)
		}
	}

	sourceFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}
