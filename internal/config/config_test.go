package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ELASTICSEARCH_URL", "")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "slotbook_session", cfg.SessionCookie)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "flights", cfg.Elasticsearch.Index)
	assert.Empty(t, cfg.Elasticsearch.URL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("VALKEY_SESSION_PREFIX", "sess:")
	t.Setenv("ELASTICSEARCH_TIMEOUT", "3s")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "sess:", cfg.Valkey.SessionPrefix)
	assert.Equal(t, 3*time.Second, cfg.Elasticsearch.Timeout)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SLOTBOOK_TEST_INT", "abc")
	assert.Equal(t, 7, getEnvInt("SLOTBOOK_TEST_INT", 7))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slotbook.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nNATS_CLUSTER_ID=from-file\n"), 0o600))

	t.Setenv("ENV_FILE", path)
	t.Setenv("NATS_CLUSTER_ID", "from-env")
	os.Unsetenv("LOG_LEVEL")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg := Load()

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.NATS.ClusterID)
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}
