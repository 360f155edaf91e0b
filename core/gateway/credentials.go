package gateway

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var providerEnvKeys = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

type credentialsFile struct {
	Credentials map[string]string `yaml:"credentials"`
}

// DefaultCredentialsPath returns the fallback credentials file location.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".psyche", "credentials.yaml")
}

// ResolveAPIKey resolves a provider API key from the environment first,
// then from the credentials file.
func ResolveAPIKey(provider string) (string, error) {
	if key := resolveFromEnv(provider); key != "" {
		return key, nil
	}

	key, err := resolveFromFile(provider)
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}

	return "", fmt.Errorf("no API key found for provider %q", provider)
}

func resolveFromEnv(provider string) string {
	envKey, ok := providerEnvKeys[provider]
	if !ok {
		return ""
	}
	return os.Getenv(envKey)
}

func resolveFromFile(provider string) (string, error) {
	path := DefaultCredentialsPath()
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credentials file: %w", err)
	}

	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return "", fmt.Errorf("parse credentials file: %w", err)
	}
	return file.Credentials[provider], nil
}
