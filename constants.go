package recordseal

// Environment variable names
const (
	// EnvConfigFile points at a YAML configuration file. Variables below
	// override values read from it.
	EnvConfigFile = "RECORDSEAL_CONFIG"

	EnvSource           = "RECORDSEAL_SOURCE"
	EnvSourceDir        = "RECORDSEAL_SOURCE_DIR"
	EnvS3Bucket         = "RECORDSEAL_S3_BUCKET"
	EnvS3Prefix         = "RECORDSEAL_S3_PREFIX"
	EnvStore            = "RECORDSEAL_STORE"
	EnvDBPath           = "RECORDSEAL_DB_PATH"
	EnvBadgerDir        = "RECORDSEAL_BADGER_DIR"
	EnvFingerprintField = "RECORDSEAL_FINGERPRINT_FIELD"
	EnvSuite            = "RECORDSEAL_SUITE"
	EnvLineTerminator   = "RECORDSEAL_LINE_TERMINATOR"

	// EnvPersistKey enables storing each record's encryption key. Parsed with
	// strconv.ParseBool.
	EnvPersistKey = "RECORDSEAL_PERSIST_KEY"
	EnvKeyStore   = "RECORDSEAL_KEY_STORE"
	EnvVaultMount = "RECORDSEAL_VAULT_MOUNT"

	EnvArchiveCiphertext = "RECORDSEAL_ARCHIVE_CIPHERTEXT"
	EnvLogLevel          = "RECORDSEAL_LOG_LEVEL"
	EnvLogFormat         = "RECORDSEAL_LOG_FORMAT"
)

// Backend names accepted in configuration.
const (
	SourceDir = "dir"
	SourceS3  = "s3"

	StoreSQLite = "sqlite"
	StoreBadger = "badger"

	KeyStoreSQLite = "sqlite"
	KeyStoreVault  = "vault"
)

// Default values
const (
	DefaultSourceDir        = "uploads"
	DefaultDBPath           = ".recordseal/records.db"
	DefaultBadgerDir        = ".recordseal/badger"
	DefaultFingerprintField = "fingerprint"
	DefaultVaultMount       = "secret"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"

	DefaultOriginalTemplate   = "%s.csv"
	DefaultSealedTemplate     = "sealed/%s.csv"
	DefaultCiphertextTemplate = "encrypted/%s.enc"
)

// MaxIdentifierLength bounds identifiers so they stay usable as object names.
const MaxIdentifierLength = 256
