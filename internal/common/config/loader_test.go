package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearDBEnv(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_PORT", "DB_SSLMODE", "PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadFromFile_Defaults(t *testing.T) {
	clearDBEnv(t)
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: forms
    user: forms
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, ":3001", cfg.HTTP.Address)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, DefaultFormName, cfg.Submission.FormName)
	assert.Equal(t, 10*time.Second, GetDuration(cfg.Submission.Timeout))
	assert.Equal(t, "form-submissions", cfg.Events.Stream)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, TracingExporterLog, cfg.Tracing.Exporter)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	clearDBEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "formsdb")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("PORT", "8081")

	path := writeConfig(t, `
app:
  name: form-service
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "formsdb", cfg.Database.Postgres.Database)
	assert.Equal(t, "svc", cfg.Database.Postgres.User)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
	assert.Equal(t, ":8081", cfg.HTTP.Address)
}

func TestLoadFromFile_PlaceholderExpansion(t *testing.T) {
	clearDBEnv(t)
	t.Setenv("FORMS_DB_HOST", "pg.example.com")

	path := writeConfig(t, `
database:
  postgres:
    host: ${FORMS_DB_HOST}
    database: forms
    user: forms
submission:
  form_name: Intake
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pg.example.com", cfg.Database.Postgres.Host)
	assert.Equal(t, "Intake", cfg.Submission.FormName)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			body:    "database:\n  driver: postgres\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "unknown driver",
			body:    "database:\n  driver: mysql\n",
			wantErr: `database.driver "mysql" is not supported`,
		},
		{
			name:    "events without redis",
			body:    "database:\n  driver: sqlite\nevents:\n  enabled: true\n",
			wantErr: "database.redis.address is required",
		},
		{
			name:    "search without elasticsearch",
			body:    "database:\n  driver: sqlite\nsearch:\n  enabled: true\n",
			wantErr: "database.elasticsearch.addresses or url is required",
		},
		{
			name:    "unknown tracing exporter",
			body:    "database:\n  driver: sqlite\ntracing:\n  enabled: true\n  exporter: jaeger\n",
			wantErr: `tracing.exporter "jaeger" is not supported`,
		},
		{
			name:    "camunda without broker",
			body:    "database:\n  driver: sqlite\ncamunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDBEnv(t)
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_SQLite(t *testing.T) {
	clearDBEnv(t)
	path := writeConfig(t, "database:\n  driver: sqlite\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "form-submissions.db", cfg.Database.SQLite.Path)
	assert.Contains(t, cfg.Database.SQLite.GetDSN(), "_foreign_keys=on")
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "forms",
		Password: "pa ss'word",
		Database: "forms",
		SSLMode:  "require",
	}

	assert.Equal(t,
		`host=localhost port=5432 user=forms password='pa ss\'word' dbname=forms sslmode=require`,
		cfg.GetDSN(),
	)
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"submit-form": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "submit-form"))
	assert.True(t, IsWorkerEnabled(cfg, "other"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "other").MaxJobsActive)
	assert.Equal(t, 2, GetWorkerConfig(cfg, "submit-form").MaxJobsActive)
}
