package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bridgeport/bridgeport-go/internal/di"
)

var (
	// Container is the dependency injection container
	Container *di.Container

	// ConfigPath is the path to the configuration file
	ConfigPath string

	// LogLevel is the logging level
	LogLevel string

	// RootCmd is the root command for CLI
	RootCmd = &cobra.Command{
		Use:   "bridgeport",
		Short: "Bridgeport - HTTPS request/response correlation bridge",
		Long: `Bridgeport terminates HTTPS and forwards every request as an event to a
single peer process over a message channel, correlating the peer's
asynchronous replies back onto the waiting HTTP callers.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Container = di.NewContainer()

			if err := Container.Initialize(ConfigPath); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}

			if LogLevel != "" {
				Container.Logger.SetLevel(LogLevel)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if Container != nil {
				Container.Close()
			}
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "Path to configuration file (default: ~/.bridgeport/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set logging level (debug, info, warn, error)")
}
