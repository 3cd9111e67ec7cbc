package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
)

func TestConfigRepositoryLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		repo := NewConfigRepository()

		config, err := repo.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

		require.NoError(t, err)
		assert.Equal(t, model.NewConfig(), config)
	})

	t.Run("file values override defaults, unset keys keep them", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `listen_addr: ":9443"
peer_url: "ws://127.0.0.1:4000/channel"
request_timeout: 5s
rate_limit_rps: 50
log_level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		repo := NewConfigRepository()
		config, err := repo.Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9443", config.ListenAddr)
		assert.Equal(t, "ws://127.0.0.1:4000/channel", config.PeerURL)
		assert.Equal(t, 5*time.Second, config.RequestTimeout)
		assert.Equal(t, 50, config.RateLimitRPS)
		assert.Equal(t, model.LogLevelDebug, config.LogLevel)

		// Unset keys fall back to the defaults
		defaults := model.NewConfig()
		assert.Equal(t, defaults.MaxPending, config.MaxPending)
		assert.Equal(t, defaults.MaxBodyBytes, config.MaxBodyBytes)
		assert.Equal(t, defaults.KeepaliveInterval, config.KeepaliveInterval)
	})

	t.Run("save and load round-trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		repo := NewConfigRepository()

		config := model.NewConfig()
		config.ListenAddr = ":18443"
		config.PeerURL = "ws://localhost:9000/peer"
		config.RequestTimeout = 12 * time.Second

		require.NoError(t, repo.Save(config, path))

		loaded, err := repo.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.ListenAddr, loaded.ListenAddr)
		assert.Equal(t, config.PeerURL, loaded.PeerURL)
		assert.Equal(t, config.RequestTimeout, loaded.RequestTimeout)
	})
}

func TestConfigRepositoryDefaultPath(t *testing.T) {
	repo := NewConfigRepository()

	path, err := repo.GetDefaultPath()

	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
}
