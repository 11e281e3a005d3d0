// ABOUTME: Tests for TOML config loading, env expansion, and validation
// ABOUTME: Uses temp files per case

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig drops a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Complete(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "http://localhost:6185"
request_timeout = "45s"
stream_read_timeout = "10m"

[auth]
username = "alice"
password = "secret"

[archive]
enabled = true
path = "/tmp/astrdesk.db"

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:6185", cfg.Server.URL)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Server.StreamReadTimeout)
	assert.Equal(t, "alice", cfg.Auth.Username)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("ASTRDESK_TEST_PASSWORD", "from-env")
	path := writeConfig(t, `
[server]
url = "http://localhost:6185"

[auth]
username = "alice"
password = "${ASTRDESK_TEST_PASSWORD}"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Password)
}

func TestLoad_UnsetEnvVarExpandsEmpty(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "http://localhost:6185"

[auth]
password = "${ASTRDESK_TEST_DEFINITELY_UNSET}"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.Password)
}

func TestLoad_MissingURL(t *testing.T) {
	path := writeConfig(t, `
[auth]
username = "alice"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.url is required")
}

func TestLoad_BadScheme(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "ftp://example.com"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http or https")
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "http://localhost:6185"
request_timeout = "very long"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout")
}

func TestLoad_ArchiveEnabledNeedsPath(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "http://localhost:6185"

[archive]
enabled = true
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive.path")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
