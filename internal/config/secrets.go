package config

import (
	"fmt"
	"os"
	"strings"
)

// loadSecret returns the trimmed secret from file when one is named, and
// from value otherwise. An empty result is not an error here; Validate
// decides which secrets are required.
func loadSecret(name, value, file string) (string, error) {
	file = strings.TrimSpace(file)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}
	return strings.TrimSpace(value), nil
}
