package di

import (
	"os"

	"github.com/bridgeport/bridgeport-go/internal/application/service"
	"github.com/bridgeport/bridgeport-go/internal/domain/model"
	"github.com/bridgeport/bridgeport-go/internal/infrastructure/config"
	"github.com/bridgeport/bridgeport-go/internal/infrastructure/listener"
	"github.com/bridgeport/bridgeport-go/internal/infrastructure/logger"
	"github.com/bridgeport/bridgeport-go/internal/infrastructure/metrics"
	"github.com/bridgeport/bridgeport-go/internal/infrastructure/transport"
)

// Container is a container for dependency injection. Nothing in it is a
// process-wide singleton; independent bridges can coexist in tests.
type Container struct {
	// Logger
	Logger *logger.Logger

	// Repositories
	ConfigRepository *config.ConfigRepository

	// Services
	ConfigService *service.ConfigService
	Bridge        *service.BridgeService

	// Shared state
	Table *service.CorrelationTable

	// Adapters
	Channel  *transport.Channel
	Listener *listener.Server

	// Config
	Config *model.Config
}

// NewContainer creates a new Container instance
func NewContainer() *Container {
	return &Container{}
}

// Initialize initializes the container
func (c *Container) Initialize(configPath string) error {
	c.Logger = logger.NewLogger(os.Stderr, "info")

	c.ConfigRepository = config.NewConfigRepository()
	c.ConfigService = service.NewConfigService(c.ConfigRepository, c.Logger)

	var err error
	c.Config, err = c.ConfigService.LoadConfig(configPath)
	if err != nil {
		return err
	}

	c.Logger.SetLevel(string(c.Config.LogLevel))

	// If a log file is configured, switch to it
	if c.Config.LogFile != "" {
		fileLogger, err := logger.NewFileLogger(c.Config.LogFile, string(c.Config.LogLevel))
		if err != nil {
			c.Logger.Error("Failed to create file logger: %v", err)
		} else {
			c.Logger = fileLogger
		}
	}

	c.Channel = transport.NewChannel(c.Config, c.Logger)
	c.Table = service.NewCorrelationTable(c.Config.MaxPending)
	c.Bridge = service.NewBridgeService(c.Channel, c.Table, c.Logger, c.Config.RequestTimeout)
	c.Listener = listener.New(c.Config, c.Bridge, c.Logger)

	metrics.RegisterBridgeCollectors(c.Bridge.PendingCount, c.Bridge.StaleResponses)

	return nil
}

// Close closes all resources
func (c *Container) Close() {
	if c.Channel != nil {
		c.Channel.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
