package recordseal

import (
	"fmt"
	"strings"

	"github.com/hengadev/errsx"
	"github.com/hengadev/recordseal/internal/crypto"
	"github.com/hengadev/recordseal/internal/record"
	"github.com/sirupsen/logrus"
)

// Config holds everything needed to build a Pipeline from configuration.
//
// It contains only data. Values can come from a YAML file (LoadConfigFromFile),
// the environment (LoadConfigFromEnvironment) or code. Runtime collaborators such
// as a custom Source or logger are passed to New as options instead.
//
// Example:
//
//	cfg := recordseal.DefaultConfig()
//	cfg.SourceDir = "/srv/uploads"
//	cfg.PersistKey = true
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// Source selects where records are read from and artifacts written to:
	// "dir" (default) or "s3".
	Source    string `yaml:"source"`
	SourceDir string `yaml:"source_dir"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Prefix  string `yaml:"s3_prefix"`

	// Store selects the entry store: "sqlite" (default) or "badger".
	Store     string `yaml:"store"`
	DBPath    string `yaml:"db_path"`
	BadgerDir string `yaml:"badger_dir"`

	// FingerprintField is the column that carries the fingerprint in sealed
	// records. It is always excluded from the fingerprint input.
	FingerprintField string `yaml:"fingerprint_field"`
	Suite            string `yaml:"suite"`
	LineTerminator   string `yaml:"line_terminator"`

	// PersistKey stores every generated encryption key in the key store so
	// sealed records can be revealed later without the caller keeping the key.
	// When false the key is only returned to the caller.
	PersistKey bool   `yaml:"persist_key"`
	KeyStore   string `yaml:"key_store"`
	VaultMount string `yaml:"vault_mount"`

	// ArchiveCiphertext writes the ciphertext next to the sealed record.
	ArchiveCiphertext bool   `yaml:"archive_ciphertext"`
	Layout            Layout `yaml:"layout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() Config {
	return Config{
		Source:            SourceDir,
		SourceDir:         DefaultSourceDir,
		Store:             StoreSQLite,
		DBPath:            DefaultDBPath,
		BadgerDir:         DefaultBadgerDir,
		FingerprintField:  DefaultFingerprintField,
		Suite:             string(crypto.DefaultSuite),
		LineTerminator:    "lf",
		KeyStore:          KeyStoreSQLite,
		VaultMount:        DefaultVaultMount,
		ArchiveCiphertext: true,
		Layout:            DefaultLayout(),
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
	}
}

// Validate applies defaults to empty optional fields and checks every value.
// All problems are reported together as an errsx.Map keyed by field.
func (c *Config) Validate() error {
	c.applyDefaults()

	errs := errsx.Map{}

	switch c.Source {
	case SourceDir:
	case SourceS3:
		if c.S3Bucket == "" {
			errs.Set("s3_bucket", fmt.Errorf("s3_bucket is required when source is %q", SourceS3))
		}
	default:
		errs.Set("source", fmt.Errorf("source must be %q or %q, got %q", SourceDir, SourceS3, c.Source))
	}

	switch c.Store {
	case StoreSQLite, StoreBadger:
	default:
		errs.Set("store", fmt.Errorf("store must be %q or %q, got %q", StoreSQLite, StoreBadger, c.Store))
	}

	if strings.ContainsAny(c.FingerprintField, ",\"\r\n") {
		errs.Set("fingerprint_field", fmt.Errorf("fingerprint_field %q must not contain delimiters, quotes or line breaks", c.FingerprintField))
	}

	if _, err := crypto.ParseSuite(c.Suite); err != nil {
		errs.Set("suite", err)
	}

	if _, err := record.ParseTerminator(c.LineTerminator); err != nil {
		errs.Set("line_terminator", err)
	}

	if c.PersistKey {
		switch c.KeyStore {
		case KeyStoreSQLite:
			if c.Store != StoreSQLite {
				errs.Set("key_store", fmt.Errorf("key_store %q requires store %q", KeyStoreSQLite, StoreSQLite))
			}
		case KeyStoreVault:
		default:
			errs.Set("key_store", fmt.Errorf("key_store must be %q or %q, got %q", KeyStoreSQLite, KeyStoreVault, c.KeyStore))
		}
	}

	if err := c.Layout.validate(); err != nil {
		errs.Set("layout", err)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs.Set("log_level", err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs.Set("log_format", fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat))
	}

	return errs.AsError()
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	setDefault(&c.Source, defaults.Source)
	setDefault(&c.SourceDir, defaults.SourceDir)
	setDefault(&c.Store, defaults.Store)
	setDefault(&c.DBPath, defaults.DBPath)
	setDefault(&c.BadgerDir, defaults.BadgerDir)
	setDefault(&c.FingerprintField, defaults.FingerprintField)
	setDefault(&c.Suite, defaults.Suite)
	setDefault(&c.LineTerminator, defaults.LineTerminator)
	setDefault(&c.KeyStore, defaults.KeyStore)
	setDefault(&c.VaultMount, defaults.VaultMount)
	setDefault(&c.Layout.Original, defaults.Layout.Original)
	setDefault(&c.Layout.Sealed, defaults.Layout.Sealed)
	setDefault(&c.Layout.Ciphertext, defaults.Layout.Ciphertext)
	setDefault(&c.LogLevel, defaults.LogLevel)
	setDefault(&c.LogFormat, defaults.LogFormat)
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}
