package config

import "time"

// Application constants
const (
	AppName    = "LogView"
	AppVersion = "1.2.0"

	// EnvPrefix namespaces every environment variable, e.g. LOGVIEW_SERVER_PORT.
	EnvPrefix = "LOGVIEW"
	// EnvConfigFile points at an explicit YAML file.
	EnvConfigFile = "LOGVIEW_CONFIG"

	// Rate Limiting
	DefaultRateLimit = 10 // requests per second
	DefaultBurstSize = 20

	// Network Timeouts
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 10 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRunTimeout      = 30 * time.Minute

	// File Paths (relative to the base directory)
	DefaultDataDir       = "data"
	DefaultUploadsDir    = "Upload"
	DefaultOutputDir     = "output"
	DefaultScratchDir    = "data/tmp"
	DefaultLogsDir       = "logs"
	DefaultReferenceFile = "Upload/export package and frame stock Rev.03.xlsx"

	// Uploads
	DefaultMaxUploadBytes = 50 << 20

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/health"
	MetricsEndpoint = "/metrics"
)

// DefaultAllowedExtensions lists the upload types the web tool accepts.
var DefaultAllowedExtensions = []string{".xlsx", ".xls", ".csv", ".txt"}
