// internal/common/config/config_test.go
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

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  driver: memory
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "tradeboard-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Search.DefaultPageSize)
	assert.Equal(t, 50, cfg.Search.MaxPageSize)
	assert.Equal(t, 1800, cfg.Search.SessionTTL)
	assert.Equal(t, 5, cfg.Posting.InitialLeadQuota)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "jobs", cfg.Database.Elasticsearch.Index)
}

func TestLoadFromFile_ValidatesDriver(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "unknown driver",
			content: `
database:
  driver: mongodb
`,
			wantErr: "database.driver",
		},
		{
			name: "postgres without host",
			content: `
database:
  driver: postgres
  postgres:
    database: tradeboard
    user: app
`,
			wantErr: "database.postgres.host",
		},
		{
			name: "elasticsearch without addresses",
			content: `
database:
  driver: elasticsearch
`,
			wantErr: "database.elasticsearch.addresses",
		},
		{
			name: "default page size above max",
			content: `
database:
  driver: memory
search:
  default_page_size: 100
  max_page_size: 50
`,
			wantErr: "default_page_size",
		},
		{
			name: "email enabled without sender",
			content: `
database:
  driver: memory
notifications:
  email:
    enabled: true
`,
			wantErr: "from_email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		Database: "tradeboard",
		User:     "app",
		Password: "secret",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=app password=secret dbname=tradeboard sslmode=require",
		p.GetDSN())
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", s.Addr())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
