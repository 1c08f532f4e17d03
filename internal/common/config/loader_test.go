package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearCredentialEnv(t *testing.T) {
	for _, key := range []string{
		"LLM_PROXY_API_KEY", "OPENAI_API_KEY", "LLM_BASE_URL", "OPENAI_BASE_URL",
		"DATABASE_URL", "DB_USER", "DB_PASSWORD", "PASSWORD", "REDIS_PASSWORD",
		"ELASTICSEARCH_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	clearCredentialEnv(t)
	path := writeConfig(t, `
database:
  driver: postgres
  postgres:
    host: localhost
    database: surveys
    user: analyst
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Data Analyst agent", cfg.App.Name)
	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "database", cfg.Introspection.Source)
	assert.Equal(t, "diagnostic_id", cfg.Intent.IdentifierColumn)
	assert.Equal(t, "_data", cfg.Intent.TableSuffix)
	assert.Equal(t, "value", cfg.Intent.ValueColumn)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "memory", cfg.History.SessionBackend)
	assert.Equal(t, "analyst-runs", cfg.History.ArchiveIndex)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("LLM_PROXY_API_KEY", "sk-test")
	t.Setenv("LLM_BASE_URL", "https://llm.internal/v1")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("SURVEY_DB_HOST", "db.internal")

	path := writeConfig(t, `
database:
  postgres:
    host: ${SURVEY_DB_HOST}
    database: surveys
    user: analyst
llm:
  enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "secret", cfg.Database.Postgres.Password)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "https://llm.internal/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llm.internal", cfg.LLM.LLMHost())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			body:    "database:\n  postgres:\n    database: surveys\n    user: analyst\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "unknown driver",
			body:    "database:\n  driver: oracle\n",
			wantErr: "database.driver must be postgres or mysql",
		},
		{
			name:    "snapshot without path",
			body:    "introspection:\n  source: snapshot\n",
			wantErr: "introspection.snapshot_path is required",
		},
		{
			name:    "cache without redis",
			body:    "introspection:\n  source: snapshot\n  snapshot_path: schema.yaml\n  cache_ttl: 60000\n",
			wantErr: "introspection.cache_ttl requires database.redis.enabled",
		},
		{
			name:    "llm without key",
			body:    "introspection:\n  source: snapshot\n  snapshot_path: schema.yaml\nllm:\n  enabled: true\n",
			wantErr: "llm.api_key",
		},
		{
			name:    "camunda without broker",
			body:    "introspection:\n  source: snapshot\n  snapshot_path: schema.yaml\ncamunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_PostgresURL(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("DATABASE_URL", "postgres://analyst@localhost/surveys?sslmode=disable")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://analyst@localhost/surveys?sslmode=disable", cfg.Database.Postgres.GetDSN())
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"resolve-survey-intent": {Enabled: false, MaxJobsActive: 2, Timeout: 1000, MaxRetries: 1},
	}}

	assert.Equal(t, 2, GetWorkerConfig(cfg, "resolve-survey-intent").MaxJobsActive)
	assert.False(t, GetWorkerConfig(cfg, "resolve-survey-intent").Enabled)

	def := GetWorkerConfig(cfg, "analyze-survey-results")
	assert.True(t, def.Enabled)
	assert.Equal(t, 30000, def.Timeout)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", p.GetDSN())
}
