package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
	"github.com/bridgeport/bridgeport-go/internal/domain/port"
)

// ConfigRepository is a viper-backed implementation of port.ConfigRepository
type ConfigRepository struct{}

// NewConfigRepository creates a new ConfigRepository instance
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

// Load loads configuration from file. A missing file yields the defaults.
func (r *ConfigRepository) Load(configPath string) (*model.Config, error) {
	config := model.NewConfig()

	// If configPath is empty, look in the default location
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	// Defaults keep unset keys from zeroing the config
	v.SetDefault("listen_addr", config.ListenAddr)
	v.SetDefault("tls_cert", config.TLSCert)
	v.SetDefault("tls_key", config.TLSKey)
	v.SetDefault("peer_url", config.PeerURL)
	v.SetDefault("request_timeout", config.RequestTimeout)
	v.SetDefault("max_body_bytes", config.MaxBodyBytes)
	v.SetDefault("max_pending", config.MaxPending)
	v.SetDefault("rate_limit_rps", config.RateLimitRPS)
	v.SetDefault("metrics_addr", config.MetricsAddr)
	v.SetDefault("keepalive_interval", config.KeepaliveInterval)
	v.SetDefault("log_level", string(config.LogLevel))
	v.SetDefault("log_file", config.LogFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config.ListenAddr = v.GetString("listen_addr")
	config.TLSCert = v.GetString("tls_cert")
	config.TLSKey = v.GetString("tls_key")
	config.PeerURL = v.GetString("peer_url")
	config.RequestTimeout = v.GetDuration("request_timeout")
	config.MaxBodyBytes = v.GetInt64("max_body_bytes")
	config.MaxPending = v.GetInt("max_pending")
	config.RateLimitRPS = v.GetInt("rate_limit_rps")
	config.MetricsAddr = v.GetString("metrics_addr")
	config.KeepaliveInterval = v.GetDuration("keepalive_interval")
	config.LogLevel = model.LogLevel(v.GetString("log_level"))
	config.LogFile = v.GetString("log_file")

	return config, nil
}

// Save saves configuration to file
func (r *ConfigRepository) Save(config *model.Config, configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("listen_addr", config.ListenAddr)
	v.Set("tls_cert", config.TLSCert)
	v.Set("tls_key", config.TLSKey)
	v.Set("peer_url", config.PeerURL)
	v.Set("request_timeout", config.RequestTimeout.String())
	v.Set("max_body_bytes", config.MaxBodyBytes)
	v.Set("max_pending", config.MaxPending)
	v.Set("rate_limit_rps", config.RateLimitRPS)
	v.Set("metrics_addr", config.MetricsAddr)
	v.Set("keepalive_interval", config.KeepaliveInterval.String())
	v.Set("log_level", string(config.LogLevel))
	v.Set("log_file", config.LogFile)

	if err := v.WriteConfig(); err != nil {
		// If the file doesn't exist yet, create it
		if strings.Contains(err.Error(), "no such file") {
			return v.SafeWriteConfig()
		}
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}

// GetDefaultPath returns the default path for the configuration file
func (r *ConfigRepository) GetDefaultPath() (string, error) {
	configDir := "/etc/bridgeport"

	if os.Getuid() != 0 {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".bridgeport")
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

var _ port.ConfigRepository = (*ConfigRepository)(nil)
