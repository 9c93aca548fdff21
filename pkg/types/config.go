package types

import "time"

// StorageBackend identifies where exported images are written.
type StorageBackend string

const (
	StorageS3   StorageBackend = "s3"
	StorageFS   StorageBackend = "fs"
	StorageNone StorageBackend = "none"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "docextract/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AWSConfig holds the credentials for the S3 storage backend.
type AWSConfig struct {
	AccessKeyID     string `json:"-" yaml:"-"`
	SecretAccessKey string `json:"-" yaml:"-"`

	// Region defaults to us-east-1.
	Region string `json:"region" yaml:"region"`
}

// HasCredentials reports whether both halves of the key pair are present.
func (c AWSConfig) HasCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// StorageConfig selects and configures the image store.
type StorageConfig struct {
	Backend StorageBackend `json:"backend" yaml:"backend"`

	// Bucket is the S3 bucket, or the top-level directory under Root for
	// the fs backend.
	Bucket string `json:"bucket" yaml:"bucket"`

	// Root is the base directory of the fs backend.
	Root string `json:"root" yaml:"root"`

	AWS AWSConfig `json:"aws" yaml:"aws"`
}

// GoogleConfig locates the OAuth client secrets and the cached token.
type GoogleConfig struct {
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	TokenFile       string `json:"token_file" yaml:"token_file"`
}

// Config is built once at startup and passed into every stage.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Google  GoogleConfig  `json:"google" yaml:"google"`

	// OutputDir receives {documentId}.json and {documentId}.yaml.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// LedgerDB is the SQLite run ledger path. Empty disables the ledger.
	LedgerDB string `json:"ledger_db" yaml:"ledger_db"`
}
