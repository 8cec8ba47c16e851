package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Platform  PlatformConfig  `mapstructure:"platform"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Poll      PollConfig      `mapstructure:"poll"`
	Device    DeviceConfig    `mapstructure:"device"`
	API       APIConfig       `mapstructure:"api"`
	HomeKit   HomeKitConfig   `mapstructure:"homekit"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	InfluxDB  InfluxDBConfig  `mapstructure:"influxdb"`
	State     StateConfig     `mapstructure:"state"`

	v *viper.Viper
}

// PlatformConfig holds the registration name used towards hosts
type PlatformConfig struct {
	Name string `mapstructure:"name"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DiscoveryConfig represents the discovery configuration
type DiscoveryConfig struct {
	ServiceType string `mapstructure:"service_type"`
	Domain      string `mapstructure:"domain"`
	Marker      string `mapstructure:"marker"`
	Window      int    `mapstructure:"window"` // Browse window in seconds
}

// PollConfig represents the poll loop configuration
type PollConfig struct {
	Interval int `mapstructure:"interval"` // Seconds between active mode reads
}

// DeviceConfig represents device transport settings
type DeviceConfig struct {
	RequestTimeout int `mapstructure:"request_timeout"` // Seconds
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
	URL           string `mapstructure:"url"`        // Used by the client
	RateLimit     int    `mapstructure:"rate_limit"` // Requests per minute per client IP, 0 disables
}

// HomeKitConfig represents the HomeKit bridge configuration
type HomeKitConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Pin           string `mapstructure:"pin"`
	ListenAddress string `mapstructure:"listen_address"`
	StoreDir      string `mapstructure:"store_dir"`
}

// MQTTConfig represents the MQTT bridge configuration
type MQTTConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Broker  struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		ClientID string `mapstructure:"client_id"`
		TLS      bool   `mapstructure:"tls"`
	} `mapstructure:"broker"`
	Auth struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"auth"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         int    `mapstructure:"qos"`
}

// InfluxDBConfig represents the mode history sink configuration
type InfluxDBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

// StateConfig represents where runtime state is kept
type StateConfig struct {
	CacheFile string `mapstructure:"cache_file"`
}

// setDefaults registers default values on v
func setDefaults(v *viper.Viper) {
	v.SetDefault("platform.name", PlatformName)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
	v.SetDefault("discovery.service_type", DefaultServiceType)
	v.SetDefault("discovery.domain", DefaultServiceDomain)
	v.SetDefault("discovery.marker", DefaultServiceMarker)
	v.SetDefault("discovery.window", int(DefaultDiscoveryWindow.Seconds()))
	v.SetDefault("poll.interval", int(DefaultPollInterval.Seconds()))
	v.SetDefault("device.request_timeout", int(DefaultRequestTimeout.Seconds()))
	v.SetDefault("api.listen_address", DefaultAPIListenAddress)
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.rate_limit", DefaultAPIRateLimit)
	v.SetDefault("homekit.enabled", true)
	v.SetDefault("homekit.pin", DefaultHomeKitPin)
	v.SetDefault("homekit.listen_address", "")
	v.SetDefault("homekit.store_dir", filepath.Join(GetConfigBaseDir(), HomeKitStoreDirName))
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker.host", DefaultMQTTHost)
	v.SetDefault("mqtt.broker.port", DefaultMQTTPort)
	v.SetDefault("mqtt.broker.client_id", DefaultMQTTClientID)
	v.SetDefault("mqtt.broker.tls", false)
	v.SetDefault("mqtt.auth.username", "")
	v.SetDefault("mqtt.auth.password", "")
	v.SetDefault("mqtt.topic_prefix", DefaultMQTTTopicPrefix)
	v.SetDefault("mqtt.qos", DefaultMQTTQoS)
	v.SetDefault("influxdb.enabled", false)
	v.SetDefault("influxdb.url", "")
	v.SetDefault("influxdb.token", "")
	v.SetDefault("influxdb.org", "")
	v.SetDefault("influxdb.bucket", DefaultInfluxBucket)
	v.SetDefault("state.cache_file", GetConfigPath(AccessoryCacheFilename))
}

// New wraps an existing viper instance. Defaults are registered on it.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	cfg := &Config{v: v}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads configuration from a file and environment variables.
// A missing file is not an error; defaults apply.
func Load(configName, configFile string) (*Config, error) {
	return LoadWith(viper.New(), configName, configFile)
}

// LoadWith is Load on a caller supplied viper instance, so flags bound with
// BindPFlag take precedence over file and env values.
func LoadWith(v *viper.Viper, configName, configFile string) (*Config, error) {
	v.SetConfigType("yaml")
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigFile(GetConfigPath(configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		slog.Info("Using config file", "path", v.ConfigFileUsed())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// DiscoveryWindow returns the configured browse window
func (c *Config) DiscoveryWindow() time.Duration {
	return SecondsOrDefault(c.Discovery.Window, DefaultDiscoveryWindow)
}

// PollInterval returns the configured poll interval
func (c *Config) PollInterval() time.Duration {
	return ValidatePollInterval(SecondsOrDefault(c.Poll.Interval, DefaultPollInterval))
}

// RequestTimeout returns the configured device request timeout
func (c *Config) RequestTimeout() time.Duration {
	return SecondsOrDefault(c.Device.RequestTimeout, DefaultRequestTimeout)
}

// Watch re-reads the config file whenever it changes on disk and calls fn
// with the new values. Only settings that are safe to change at runtime
// should be applied by fn.
func (c *Config) Watch(fn func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		next := &Config{v: c.v}
		if err := c.v.Unmarshal(next); err != nil {
			slog.Error("config: reload failed", "path", e.Name, "error", err)
			return
		}
		slog.Info("config: reloaded", "path", e.Name)
		fn(next)
	})
	c.v.WatchConfig()
}
