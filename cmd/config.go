package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
)

// configCmd is the command to manage configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage Bridgeport configuration.`,
}

// configShowCmd is the command to display configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := Container.Config
		fmt.Println("Bridgeport Configuration:")
		fmt.Printf("Listen Address: %s\n", cfg.ListenAddr)
		fmt.Printf("TLS Certificate: %s\n", cfg.TLSCert)
		fmt.Printf("TLS Key: %s\n", cfg.TLSKey)
		fmt.Printf("Peer URL: %s\n", cfg.PeerURL)
		fmt.Printf("Request Timeout: %s\n", cfg.RequestTimeout)
		fmt.Printf("Max Body Bytes: %d\n", cfg.MaxBodyBytes)
		fmt.Printf("Max Pending: %d\n", cfg.MaxPending)
		fmt.Printf("Rate Limit (rps): %d\n", cfg.RateLimitRPS)
		fmt.Printf("Metrics Address: %s\n", cfg.MetricsAddr)
		fmt.Printf("Keepalive Interval: %s\n", cfg.KeepaliveInterval)
		fmt.Printf("Log Level: %s\n", cfg.LogLevel)
		fmt.Printf("Log File: %s\n", cfg.LogFile)
	},
}

// configSetCmd is the command to set a configuration value
var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set configuration",
	Long: `Set a Bridgeport configuration value.
Examples:
  bridgeport config set listen_addr :8443
  bridgeport config set peer_url ws://127.0.0.1:9777/channel
  bridgeport config set request_timeout 30s
  bridgeport config set log_level debug`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]
		cfg := Container.Config

		if err := applyConfigValue(cfg, key, value); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if err := Container.ConfigService.SaveConfig(cfg, ConfigPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s set to %s\n", key, value)
	},
}

func applyConfigValue(cfg *model.Config, key, value string) error {
	switch key {
	case "listen_addr":
		cfg.ListenAddr = value
	case "tls_cert":
		cfg.TLSCert = value
	case "tls_key":
		cfg.TLSKey = value
	case "peer_url":
		cfg.PeerURL = value
	case "request_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		cfg.RequestTimeout = d
	case "keepalive_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		cfg.KeepaliveInterval = d
	case "max_body_bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", value, err)
		}
		cfg.MaxBodyBytes = n
	case "max_pending":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", value, err)
		}
		cfg.MaxPending = n
	case "rate_limit_rps":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", value, err)
		}
		cfg.RateLimitRPS = n
	case "metrics_addr":
		cfg.MetricsAddr = value
	case "log_level":
		cfg.LogLevel = model.LogLevel(value)
	case "log_file":
		cfg.LogFile = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	RootCmd.AddCommand(configCmd)
}
