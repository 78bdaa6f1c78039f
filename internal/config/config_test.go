package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "flows/premium.json", cfg.Flow.Path)
	assert.Equal(t, "start", cfg.Flow.StartNode)
	assert.Equal(t, "collect_contact", cfg.Flow.FallbackNode)
	assert.Equal(t, "__CLICKED__", cfg.Flow.SelectionMarker)
	assert.Equal(t, "ctx:", cfg.Redis.Prefix)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, []string{"MS", "AL", "LA", "GA"}, cfg.Zip.States)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "memory", cfg.LeadDriver())
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("N8N_WEBHOOK_URL", "http://n8n.local/hook")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "postgres://localhost/leads", cfg.Leads.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "gsk-test", cfg.LLM.APIKey)
	assert.Equal(t, "http://n8n.local/hook", cfg.Notify.WebhookURL)
	assert.Equal(t, "postgres", cfg.LeadDriver())
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("FLOW_PATH", "legacy.json")
	t.Setenv("LEADWIZARD_FLOW_PATH", "prefixed.json")
	t.Setenv("LEADWIZARD_REDIS_SESSION_TTL", "90m")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "prefixed.json", cfg.Flow.Path)
	assert.Equal(t, 90*time.Minute, cfg.Redis.SessionTTL)
}

func TestLoad_SessionsFromEnv(t *testing.T) {
	t.Setenv("LEADWIZARD_SESSIONS_ENCRYPTION_KEY", "a2V5")
	t.Setenv("LEADWIZARD_SESSIONS_MASK_ANSWERS", "ssn,dob")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "a2V5", cfg.Sessions.EncryptionKey)
	assert.Equal(t, []string{"ssn", "dob"}, cfg.Sessions.MaskAnswers)
	assert.Empty(t, cfg.Sessions.FallbackKeys)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadwizard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "127.0.0.1:7000"
leads:
  driver: sqlite
  sqlite_path: /tmp/leads.db
zip:
  states: [MS, TX]
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.LeadDriver())
	assert.Equal(t, []string{"MS", "TX"}, cfg.Zip.States)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	t.Setenv("LEADWIZARD_LEADS_DRIVER", "mongo")
	_, err = Load(New(), "")
	assert.ErrorContains(t, err, "invalid leads driver")

	t.Setenv("LEADWIZARD_LEADS_DRIVER", "postgres")
	_, err = Load(New(), "")
	assert.ErrorContains(t, err, "requires a database url")
}
