// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the file name is the key and the trimmed
// contents are the value. File names are written in kebab case
// (aws-secret-access-key) and returned as environment-style keys
// (AWS_SECRET_ACCESS_KEY), so a secrets directory can stand in for the
// variables the configuration layer reads.
//
// Recognised files: aws-access-key-id, aws-secret-access-key, aws-region,
// s3-bucket-name.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Load reads all files in dir and returns a map of environment-style key
// to trimmed contents. A missing directory is not an error; Load returns
// an empty map. Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[EnvKey(name)] = value
		}
	}

	return secrets, nil
}

// EnvKey maps a secret file name to its environment variable name.
func EnvKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
