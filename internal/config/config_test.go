// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jason-s-yu/ninetynine/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, game.CapacityLimit, cfg.Game.MaxPlayers)
	assert.Empty(t, cfg.Redis.Addr, "recording is off unless Redis is configured")
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 8080
redis:
  addr: localhost:6379
  queue: from_file
game:
  max_players: 6
`), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("HISTORIAN_QUEUE_NAME", "from_env")
	t.Setenv("GAME_STARTING_CHIPS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "from_env", cfg.Redis.Queue)
	assert.Equal(t, game.Rules{MaxPlayers: 6, StartingChips: 2}, cfg.Game)
	assert.Equal(t, 20, cfg.Historian.BatchSize, "unset keys keep their defaults")
}

func TestLoadIgnoresUnparseableInts(t *testing.T) {
	t.Setenv("PORT", "eighty")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadRejectsInvalidRules(t *testing.T) {
	t.Setenv("GAME_MAX_PLAYERS", "18")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxPlayers")

	t.Setenv("GAME_MAX_PLAYERS", "4")
	t.Setenv("GAME_STARTING_CHIPS", "5")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
