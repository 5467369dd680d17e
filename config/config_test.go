package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// run from an empty directory so no config.yaml is picked up
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "build", cfg.Site.Root)
	assert.Equal(t, "https://example.com", cfg.Site.Host)
	assert.Equal(t, "sitemap.xml", cfg.Sitemap.Output)
	assert.Equal(t, []string{`(?i)\.DS_Store$`, `^/sitemap\.xml$`}, cfg.Sitemap.Ignore)
	assert.True(t, cfg.Sitemap.OnShutdown)
	assert.Empty(t, cfg.Database.Driver)
	assert.Equal(t, "logs", cfg.Logging.Dir)
	assert.Equal(t, 2, cfg.Checker.Parallelism)
	assert.Equal(t, 15*time.Second, cfg.GetReadTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetCheckTimeout())
}

func TestLoadConfig_File(t *testing.T) {
	content := `
server:
  port: 9090
  writetimeout: 1m
site:
  root: public
  host: https://ad.example.app
sitemap:
  output: map.xml
  ignore:
    - '\.map$'
  onshutdown: false
database:
  driver: sqlite3
  url: history.db
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.GetWriteTimeout())
	assert.Equal(t, "public", cfg.Site.Root)
	assert.Equal(t, "https://ad.example.app", cfg.Site.Host)
	assert.Equal(t, "map.xml", cfg.Sitemap.Output)
	assert.Equal(t, []string{`\.map$`}, cfg.Sitemap.Ignore)
	assert.False(t, cfg.Sitemap.OnShutdown)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "history.db", cfg.Database.URL)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEVSERVER_SITE_HOST", "https://staging.example.com")
	t.Setenv("DEVSERVER_SERVER_PORT", "3000")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com", cfg.Site.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseDuration_Fallback(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseDuration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, parseDuration("soon", 5*time.Second))
	assert.Equal(t, 5*time.Second, parseDuration("-1s", 5*time.Second))
	assert.Equal(t, 2*time.Minute, parseDuration("2m", 5*time.Second))
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
