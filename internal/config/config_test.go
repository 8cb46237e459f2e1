package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, 8, cfg.Game.HandSize)
	require.Equal(t, 5, cfg.Game.ForeignColoniesToWin)
	require.Equal(t, 60*time.Second, cfg.Game.DealTimer)
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
server:
  address: ":9090"
logging:
  level: debug
  format: json
game:
  hand_size: 10
  deal_timer: 90s
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, 10, cfg.Game.HandSize)
	require.Equal(t, 90*time.Second, cfg.Game.DealTimer)

	// Untouched keys keep their defaults.
	require.Equal(t, 5, cfg.Game.PlanetsPerPlayer)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestRulesConversion(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	rules := cfg.Game.Rules()
	require.Equal(t, cfg.Game.MaxShipsInGate, rules.MaxShipsInGate)
	require.Equal(t, cfg.Game.HomeColoniesForPower, rules.HomeColoniesForPower)
}
