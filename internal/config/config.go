// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the run configuration once at startup.
//
// Values come from, highest precedence first: the process environment,
// a dotenv or YAML config file (.env.local by default), files in the
// secrets directory, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/docextract/internal/secrets"
	"github.com/pdiddy/docextract/pkg/types"
)

// Keys, as they appear in the environment and in .env.local.
const (
	KeyAccessKeyID     = "AWS_ACCESS_KEY_ID"
	KeySecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	KeyRegion          = "AWS_REGION"
	KeyBucket          = "S3_BUCKET_NAME"
	KeyBackend         = "STORAGE_BACKEND"
	KeyStorageRoot     = "STORAGE_ROOT"
	KeyCredentialsFile = "GOOGLE_CREDENTIALS_FILE"
	KeyTokenFile       = "GOOGLE_TOKEN_FILE"
	KeyOutputDir       = "OUTPUT_DIR"
	KeyLedgerDB        = "LEDGER_DB"
	KeyHTTPTimeout     = "HTTP_TIMEOUT"
)

// DefaultFSBucket is the bucket directory used by the fs backend when
// S3_BUCKET_NAME is unset.
const DefaultFSBucket = "images"

var allKeys = []string{
	KeyAccessKeyID, KeySecretAccessKey, KeyRegion, KeyBucket, KeyBackend,
	KeyStorageRoot, KeyCredentialsFile, KeyTokenFile, KeyOutputDir,
	KeyLedgerDB, KeyHTTPTimeout,
}

var defaults = map[string]any{
	KeyRegion:          "us-east-1",
	KeyStorageRoot:     "storage",
	KeyCredentialsFile: "credentials.json",
	KeyTokenFile:       filepath.Join("tokens", "token.json"),
	KeyOutputDir:       ".",
	KeyLedgerDB:        "docextract.db",
	KeyHTTPTimeout:     "60s",
}

// Options locates the configuration sources.
type Options struct {
	// File is a dotenv or YAML file. Missing is not an error unless Required.
	File     string
	Required bool

	// SecretsDir holds one file per secret (see package secrets).
	SecretsDir string

	// UserAgent is sent with image downloads.
	UserAgent string
}

// Load builds a Config from the sources named in opts.
func Load(opts Options) (types.Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(viperKey(k), val)
	}

	if opts.SecretsDir != "" {
		s, err := secrets.Load(opts.SecretsDir)
		if err != nil {
			return types.Config{}, err
		}
		for k, val := range s {
			v.SetDefault(viperKey(k), val)
		}
	}

	for _, k := range allKeys {
		if err := v.BindEnv(viperKey(k), k); err != nil {
			return types.Config{}, fmt.Errorf("binding %s: %w", k, err)
		}
	}

	if err := readFile(v, opts); err != nil {
		return types.Config{}, err
	}

	return build(v, opts)
}

func readFile(v *viper.Viper, opts Options) error {
	if opts.File == "" {
		return nil
	}
	if _, err := os.Stat(opts.File); err != nil {
		if os.IsNotExist(err) && !opts.Required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", opts.File, err)
	}
	v.SetConfigFile(opts.File)
	if isDotenv(opts.File) {
		v.SetConfigType("env")
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", opts.File, err)
	}
	return nil
}

func build(v *viper.Viper, opts Options) (types.Config, error) {
	get := func(k string) string { return strings.TrimSpace(v.GetString(viperKey(k))) }

	timeout, err := time.ParseDuration(get(KeyHTTPTimeout))
	if err != nil {
		return types.Config{}, fmt.Errorf("parsing %s: %w", KeyHTTPTimeout, err)
	}

	aws := types.AWSConfig{
		AccessKeyID:     get(KeyAccessKeyID),
		SecretAccessKey: get(KeySecretAccessKey),
		Region:          get(KeyRegion),
	}
	storage := types.StorageConfig{
		Backend: types.StorageBackend(strings.ToLower(get(KeyBackend))),
		Bucket:  get(KeyBucket),
		Root:    get(KeyStorageRoot),
		AWS:     aws,
	}
	if storage.Backend == "" {
		storage.Backend = types.StorageNone
		if aws.HasCredentials() && storage.Bucket != "" {
			storage.Backend = types.StorageS3
		}
	}
	switch storage.Backend {
	case types.StorageFS:
		if storage.Bucket == "" {
			storage.Bucket = DefaultFSBucket
		}
	case types.StorageS3, types.StorageNone:
	default:
		return types.Config{}, fmt.Errorf("%s: unknown backend %q", KeyBackend, storage.Backend)
	}

	return types.Config{
		HTTP: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: opts.UserAgent,
		},
		Storage: storage,
		Google: types.GoogleConfig{
			CredentialsFile: get(KeyCredentialsFile),
			TokenFile:       get(KeyTokenFile),
		},
		OutputDir: get(KeyOutputDir),
		LedgerDB:  get(KeyLedgerDB),
	}, nil
}

// viperKey is the lower-case form viper uses internally; dotenv keys are
// lower-cased on read.
func viperKey(k string) string {
	return strings.ToLower(k)
}

func isDotenv(path string) bool {
	base := filepath.Base(path)
	return base == ".env" || strings.HasPrefix(base, ".env.") || filepath.Ext(base) == ".env"
}
