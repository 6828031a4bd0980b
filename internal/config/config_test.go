package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 8080
storage:
  upload_dir: ./uploads
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	require.NotNil(t, cfg.Availability.BufferHours)
	assert.Equal(t, 2.0, *cfg.Availability.BufferHours)
	assert.Equal(t, "last_writer_wins", cfg.Availability.StatusPolicy)
	assert.Equal(t, "local", cfg.Lock.Type)
	assert.Equal(t, "log", cfg.Events.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 15, cfg.Server.RequestTimeoutSeconds)
	assert.NotEmpty(t, cfg.Scheduler.CleanupExpiredDocuments)
}

func TestParse_ZeroBufferIsKept(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + "availability:\n  buffer_hours: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, *cfg.Availability.BufferHours)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"Negative buffer", minimalYAML + "availability:\n  buffer_hours: -1\n", "buffer_hours"},
		{"Buffer above cap", minimalYAML + "availability:\n  buffer_hours: 1e12\n", "must not exceed"},
		{"Infinite buffer", minimalYAML + "availability:\n  buffer_hours: .inf\n", "finite"},
		{"Unknown policy", minimalYAML + "availability:\n  status_policy: strict\n", "status policy"},
		{"Bad port", "server:\n  port: 0\nstorage:\n  upload_dir: x\n", "invalid server port"},
		{"Postgres without host", minimalYAML + "database:\n  driver: postgres\n", "database host"},
		{"Unknown lock", minimalYAML + "lock:\n  type: zookeeper\n", "lock type"},
		{"Missing upload dir", "server:\n  port: 8080\n", "upload directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("BUFFER_HOURS", "0.5")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, 0.5, *cfg.Availability.BufferHours)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.GetServerAddress())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML+`
database:
  driver: postgres
  host: db
  port: 5432
  user: fleet
  password: secret
  database: fleet
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://fleet:secret@db:5432/fleet?sslmode=disable", cfg.GetDatabaseConnectionString())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
