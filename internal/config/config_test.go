package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dam-inspection-system/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 20.0, cfg.Dispatch.MinBatteryLevel)
	assert.Equal(t, 100.0, cfg.Gauge.InitialWaterLevel)
	assert.False(t, cfg.Postgres.Enabled)
	require.Len(t, cfg.Fleet.Units, 4)
	assert.Equal(t, "ROV-001", cfg.Fleet.Units[0].ID)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  shutdown_timeout: 5s
log:
  level: debug
postgres:
  enabled: true
  url: postgres://audit@db/dam
nats:
  enabled: true
  url: nats://bus:4222
dispatch:
  min_battery_level: 35
fleet:
  units:
    - id: CRAWLER-01
      type: crawler
      capabilities: [lidar, visual-camera]
      battery_level: 80
      location: {x: 1, y: 2, z: -3}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Postgres.Enabled)
	assert.Equal(t, "postgres://audit@db/dam", cfg.Postgres.URL)
	assert.Equal(t, "dam.alerts", cfg.NATS.SubjectPrefix)
	assert.Equal(t, 35.0, cfg.Dispatch.MinBatteryLevel)
	require.Len(t, cfg.Fleet.Units, 1)

	unit, err := cfg.Fleet.Units[0].RoboticUnit()
	require.NoError(t, err)
	assert.Equal(t, domain.UnitTypeCrawler, unit.Type)
	assert.Equal(t, domain.UnitStatusIdle, unit.Status)
	assert.Equal(t, []domain.Capability{domain.CapabilityLidar, domain.CapabilityVisualCamera}, unit.Capabilities)
	assert.Equal(t, domain.Location{X: 1, Y: 2, Z: -3}, unit.Location)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log level", "log:\n  level: loud\n"},
		{"battery out of range", "dispatch:\n  min_battery_level: 120\n"},
		{"unknown unit type", "fleet:\n  units:\n    - id: X-1\n      type: submarine\n"},
		{"unknown capability", "fleet:\n  units:\n    - id: X-1\n      type: crawler\n      capabilities: [radar]\n"},
		{"missing unit id", "fleet:\n  units:\n    - type: crawler\n"},
		{"metrics path", "metrics:\n  path: metrics\n"},
		{"malformed yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsDuplicateUnits(t *testing.T) {
	path := writeConfig(t, `
fleet:
  units:
    - {id: ROV-001, type: underwater-vehicle}
    - {id: ROV-001, type: underwater-vehicle}
`)

	_, err := Load(path)
	require.ErrorIs(t, err, domain.ErrDuplicateUnit)
}

func TestDefaultFleetParses(t *testing.T) {
	for _, u := range DefaultFleet() {
		unit, err := u.RoboticUnit()
		require.NoError(t, err, u.ID)
		assert.Equal(t, 100.0, unit.BatteryLevel)
	}

	arm, err := DefaultFleet()[3].RoboticUnit()
	require.NoError(t, err)
	assert.False(t, arm.CanInspect())
}
