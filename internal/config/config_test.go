package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  addr: ":9090"
database:
  path: /tmp/stock.sqlite3
rotation:
  start: "2026-02-26"
  interval_days: 14
  order: [A, B, C]
  teams:
    - key: A
      name: Team A
    - key: B
      name: Dr.Lee/Zhijun
      restricted_category: Dr.Lee
    - key: C
      name: Team C
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labstock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/stock.sqlite3", cfg.Database.Path)
	assert.Equal(t, 540, cfg.Timezone.OffsetMinutes)
	assert.Equal(t, "KST", cfg.Timezone.Name)
	assert.Equal(t, 168, cfg.Auth.TokenHours)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Rotation.Order)
	assert.Equal(t, "Dr.Lee", cfg.Rotation.Teams[1].RestrictedCategory)
	assert.Equal(t, time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC), cfg.Rotation.StartDate())
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LABSTOCK_DATABASE_PATH", "/var/lib/labstock.sqlite3")
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/labstock.sqlite3", cfg.Database.Path)
}

func TestLoadRejectsUnknownTeamInOrder(t *testing.T) {
	body := `
rotation:
  start: "2026-02-26"
  order: [A, Z]
  teams:
    - key: A
      name: Team A
`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown team key "Z"`)
}

func TestLoadRejectsBadStart(t *testing.T) {
	body := `
rotation:
  start: "26/02/2026"
  order: [A]
  teams:
    - key: A
      name: Team A
`
	_, err := Load(writeConfig(t, body))
	assert.Error(t, err)
}

func TestLoadRequiresRotation(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
