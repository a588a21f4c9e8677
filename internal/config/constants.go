package config

const (
	// Mode values
	ModeScan       = "scan"
	ModeRevalidate = "revalidate"
	ModeList       = "list"
	ModeAutomated  = "automated"

	// Storage backends
	StorageBackendSQLite  = "sqlite"
	StorageBackendParquet = "parquet"
	StorageBackendMemory  = "memory"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// HTTP client Defaults
	DefaultHTTPUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultHTTPTimeoutSecs      = 30
	DefaultHTTPMaxContentSizeMB = 20
	DefaultHTTPMaxRedirects     = 10
	DefaultHTTPRetryMaxRetries  = 2
	DefaultHTTPRetryBaseDelayMs = 1000
	DefaultHTTPRetryMaxDelayMs  = 10000

	// Scanner Defaults
	DefaultScannerMaxContentSizeMB  = 10
	DefaultScannerMaxPairCandidates = 25

	// Validator Defaults
	DefaultValidatorTimeoutSecs     = 10
	DefaultValidatorAWSRetryDelayMs = 5000

	// Source map Defaults
	DefaultSourceMapFetchTimeoutSecs = 10
	DefaultSourceMapCacheTTLMinutes  = 30
	DefaultSourceMapCacheCapacity    = 256
	DefaultSourceMapContextLines     = 5

	// Storage Defaults
	DefaultStorageBackend          = StorageBackendSQLite
	DefaultStorageSQLitePath       = "database/findings.db"
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageCompressionCodec = "zstd"

	// Fetcher Defaults
	DefaultFetcherMaxScripts    = 100
	DefaultFetcherMaxChunkDepth = 1

	// Scheduler Defaults
	DefaultSchedulerIntervalMinutes = 1440
	DefaultSchedulerRetryAttempts   = 2
)
