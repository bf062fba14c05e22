// Package config provides configuration for the MoneyKeeper chat client.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the chat client configuration.
type Config struct {
	// Backend endpoints
	APIURL string `yaml:"api_url"`
	WSURL  string `yaml:"ws_url"`

	// Device-local storage
	DBPath string `yaml:"db_path"`

	// Conversation defaults
	Personality string `yaml:"personality"`

	// Transport
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`

	// Formatting
	Locale   string `yaml:"locale"`
	Currency string `yaml:"currency"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		APIURL:            "http://localhost:5000/api",
		WSURL:             "ws://localhost:5000",
		DBPath:            "moneychat.db",
		Personality:       "friendly",
		ReconnectAttempts: 5,
		ReconnectDelay:    time.Second,
		ReconnectMaxDelay: 5 * time.Second,
		PingInterval:      25 * time.Second,
		HTTPTimeout:       0,
		Locale:            "vi",
		Currency:          "đ",
		LogLevel:          "warn",
		LogFormat:         "console",
	}
}

// Load loads configuration from the file named by MONEYCHAT_CONFIG, if any,
// then applies environment variables on top.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("MONEYCHAT_CONFIG"))
}

// LoadFile loads configuration from path, if non-empty, then applies
// environment variables on top.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIURL = getEnv("MONEYCHAT_API_URL", c.APIURL)
	c.WSURL = getEnv("MONEYCHAT_WS_URL", c.WSURL)
	c.DBPath = getEnv("MONEYCHAT_DB_PATH", c.DBPath)
	c.Personality = getEnv("MONEYCHAT_PERSONALITY", c.Personality)
	c.ReconnectAttempts = getEnvInt("MONEYCHAT_RECONNECT_ATTEMPTS", c.ReconnectAttempts)
	c.ReconnectDelay = getEnvMillis("MONEYCHAT_RECONNECT_DELAY_MS", c.ReconnectDelay)
	c.ReconnectMaxDelay = getEnvMillis("MONEYCHAT_RECONNECT_MAX_DELAY_MS", c.ReconnectMaxDelay)
	c.PingInterval = getEnvMillis("MONEYCHAT_PING_INTERVAL_MS", c.PingInterval)
	c.HTTPTimeout = getEnvMillis("MONEYCHAT_HTTP_TIMEOUT_MS", c.HTTPTimeout)
	c.Locale = getEnv("MONEYCHAT_LOCALE", c.Locale)
	c.Currency = getEnv("MONEYCHAT_CURRENCY", c.Currency)
	c.LogLevel = getEnv("MONEYCHAT_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("MONEYCHAT_LOG_FORMAT", c.LogFormat)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvMillis(key string, defaultVal time.Duration) time.Duration {
	ms := getEnvInt(key, -1)
	if ms < 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}
