// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: analytics-server
dataset:
  path: ./data/recruitment.csv
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "analytics-server", cfg.App.Name)
	assert.Equal(t, "./data/recruitment.csv", cfg.Dataset.Path)
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
dataset:
  path: ./data/recruitment.csv
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, []string{"closed", "joined"}, cfg.Dataset.ClosedStatuses)
	assert.Equal(t, "month", cfg.Dataset.TrendBucket)
	assert.Equal(t, 300000, cfg.Dataset.CacheTTL)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFileValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "dataset path required",
			content: `app: {name: x}`,
			errMsg:  "dataset.path is required",
		},
		{
			name: "invalid trend bucket",
			content: `
dataset:
  path: ./data.csv
  trend_bucket: fortnight
`,
			errMsg: "trend_bucket",
		},
		{
			name: "redis address required when enabled",
			content: `
dataset:
  path: ./data.csv
database:
  redis:
    enabled: true
`,
			errMsg: "redis.address",
		},
		{
			name: "postgres host required when audit enabled",
			content: `
dataset:
  path: ./data.csv
audit:
  enabled: true
`,
			errMsg: "postgres.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := LoadFromFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFileExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "sekret")

	path := writeConfigFile(t, `
dataset:
  path: ./data.csv
database:
  postgres:
    password: ${TEST_DB_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sekret", cfg.Database.Postgres.Password)
}

func TestOverrideEmptyConfig(t *testing.T) {
	t.Setenv("DATASET_PATH", "/srv/data/recruitment.xlsx")

	cfg := &Config{}
	overrideEmptyConfig(cfg)
	assert.Equal(t, "/srv/data/recruitment.xlsx", cfg.Dataset.Path)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, GetDuration(300000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432, User: "app",
		Password: "pw", Database: "analytics", SSLMode: "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=app password=pw dbname=analytics sslmode=disable", p.GetDSN())
}
