package config

import "time"

// Common constants shared between daemon and client
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "saveconnect"

	// DaemonConfigFilename is the base filename for daemon config
	DaemonConfigFilename = "saveconnectd.yaml"

	// ClientConfigFilename is the base filename for client config
	ClientConfigFilename = "saveconnectctl.yaml"

	// AccessoryCacheFilename is the base filename for the accessory cache
	AccessoryCacheFilename = "accessories.yaml"

	// HomeKitStoreDirName is the directory holding HomeKit pairing data
	HomeKitStoreDirName = "homekit"

	// PlatformName is the name the daemon registers itself under with hosts
	PlatformName = "SaveConnect"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "SAVECONNECT"

	// DefaultAPIListenAddress is the default HTTP API listen address
	DefaultAPIListenAddress = ":9124"

	// DefaultAPIURL is where the client expects the daemon by default
	DefaultAPIURL = "http://127.0.0.1:9124"

	// DefaultAPIRateLimit is the default number of API requests per minute per client IP
	DefaultAPIRateLimit = 120

	// DefaultHomeKitPin is the setup code shown to HomeKit during pairing
	DefaultHomeKitPin = "00102003"
)

// Discovery defaults
const (
	// DefaultServiceType is the DNS-SD service type SAVE CONNECT units advertise
	DefaultServiceType = "_http._tcp"

	// DefaultServiceDomain is the mDNS browse domain
	DefaultServiceDomain = "local."

	// DefaultServiceMarker is matched case-insensitively against instance names
	DefaultServiceMarker = "saveconnect"

	// DefaultDiscoveryWindow is how long a single discovery browse runs
	DefaultDiscoveryWindow = 5 * time.Second
)

// Device defaults
const (
	// DefaultPollInterval is the interval between active mode reads
	DefaultPollInterval = 30 * time.Second

	// DefaultRequestTimeout bounds a single device HTTP request
	DefaultRequestTimeout = 5 * time.Second

	// MinPollInterval is the smallest poll interval accepted from config
	MinPollInterval = time.Second
)

// MQTT defaults
const (
	DefaultMQTTHost        = "localhost"
	DefaultMQTTPort        = 1883
	DefaultMQTTClientID    = "saveconnectd"
	DefaultMQTTTopicPrefix = "saveconnect"
	DefaultMQTTQoS         = 1
)

// DefaultInfluxBucket is the bucket mode readings are written to
const DefaultInfluxBucket = "saveconnect"

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
