package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GROQ_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Classifier.CacheTTL)
	assert.Equal(t, 0.35, cfg.Classifier.MinConfidence)
	assert.Equal(t, 5*time.Minute, cfg.Notifications.DedupWindow)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.False(t, cfg.DemoMode)
	assert.False(t, cfg.LLMEnabled())
	assert.Error(t, cfg.ValidateLLM())
	assert.NoError(t, cfg.ValidateDatabase())
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.URL)
	assert.True(t, cfg.DemoMode)
	assert.True(t, cfg.LLMEnabled())
	assert.NoError(t, cfg.ValidateLLM())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestValidateDatabaseRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Driver = "mysql"
	cfg.Database.URL = "x"
	assert.Error(t, cfg.ValidateDatabase())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
