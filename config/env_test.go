package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	q := Queue()
	assert.Equal(t, "memory", q.Driver)
	assert.Equal(t, 2, q.Workers)
	assert.Equal(t, []string{"localhost:9092"}, q.KafkaBrokers)

	assert.Equal(t, "storefront_session", Session().CookieName)
	assert.Equal(t, "local", Mail().Backend)
}

func TestOverride(t *testing.T) {
	Override(map[string]string{"db_driver": "postgres", "mail_backend": "CLOUD", "mail_port": "2525"})
	t.Cleanup(func() {
		Override(map[string]string{"DB_DRIVER": defaultDatabaseDriver, "MAIL_BACKEND": "local", "MAIL_PORT": ""})
	})

	assert.Equal(t, "postgres", DatabaseDriver())
	assert.Equal(t, defaultPostgresDSN, DatabaseDSN())
	assert.Equal(t, "cloud", Mail().Backend)
	assert.Equal(t, 2525, Mail().SMTPPort)
}

func TestUnknownDriverFallsBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())

	t.Setenv("MAIL_BACKEND", "carrier-pigeon")
	assert.Equal(t, "local", Mail().Backend)
}

func TestEnvironmentWins(t *testing.T) {
	Override(map[string]string{"APP_PORT": "9000"})
	t.Cleanup(func() { Override(map[string]string{"APP_PORT": defaultAppPort}) })

	assert.Equal(t, "9000", AppPort())
	t.Setenv("APP_PORT", "9100")
	assert.Equal(t, "9100", AppPort())
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_env":"staging","queue_workers":4,"nested":{"x":1}}`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("QUEUE_WORKERS=6\nKAFKA_BROKERS= a:9092, ,b:9092\n"), 0o600))

	mu.RLock()
	saved := values
	mu.RUnlock()
	t.Cleanup(func() {
		mu.Lock()
		values = saved
		mu.Unlock()
	})

	require.NoError(t, loadFromFiles(jsonPath, envPath))
	assert.Equal(t, "staging", AppEnv())
	assert.Equal(t, 6, Queue().Workers)
	assert.Equal(t, []string{"a:9092", "b:9092"}, Queue().KafkaBrokers)
}

func TestMissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	mu.RLock()
	saved := values
	mu.RUnlock()
	t.Cleanup(func() {
		mu.Lock()
		values = saved
		mu.Unlock()
	})

	assert.NoError(t, loadFromFiles(filepath.Join(dir, "app.json"), filepath.Join(dir, ".env")))
}
