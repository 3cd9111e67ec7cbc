package model

import (
	"os"
	"path/filepath"
	"time"
)

// LogLevel defines logging levels
type LogLevel string

const (
	// LogLevelDebug is the level for debug messages
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the level for informational messages
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the level for warning messages
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the level for error messages
	LogLevelError LogLevel = "error"
)

// Config is the configuration structure for the bridgeport daemon
type Config struct {
	// ListenAddr is the address the HTTPS listener binds to
	ListenAddr string
	// TLSCert is the path to the TLS certificate file for the listener
	TLSCert string
	// TLSKey is the path to the TLS key file for the listener
	TLSKey string
	// PeerURL is the websocket endpoint of the peer process
	PeerURL string
	// RequestTimeout is how long a forwarded request may stay pending
	RequestTimeout time.Duration
	// MaxBodyBytes caps the size of inbound request bodies
	MaxBodyBytes int64
	// MaxPending caps concurrently pending requests (0 disables the cap)
	MaxPending int
	// RateLimitRPS limits forwarded requests per second per client IP
	// (0 disables rate limiting)
	RateLimitRPS int
	// MetricsAddr is the address of the metrics listener (empty disables it)
	MetricsAddr string
	// KeepaliveInterval is the channel ping interval (0 disables keepalive)
	KeepaliveInterval time.Duration
	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel LogLevel
	// LogFile is the path to the log file (empty for stderr)
	LogFile string
}

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	return &Config{
		ListenAddr:        ":8443",
		TLSCert:           "",
		TLSKey:            "",
		PeerURL:           "ws://127.0.0.1:9777/channel",
		RequestTimeout:    30 * time.Second,
		MaxBodyBytes:      10 << 20,
		MaxPending:        1024,
		RateLimitRPS:      0,
		MetricsAddr:       "",
		KeepaliveInterval: 30 * time.Second,
		LogLevel:          LogLevelInfo,
		LogFile:           "",
	}
}

// GetConfigFilePath returns the path to the configuration file
func (c *Config) GetConfigFilePath() string {
	configDir := "/etc/bridgeport"

	// If not root, use home directory
	if os.Getuid() != 0 {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configDir = filepath.Join(homeDir, ".bridgeport")
		}
	}

	return filepath.Join(configDir, "config.yaml")
}
