package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// unsetEnv clears variables for the duration of the test. cleanenv treats a
// set-but-empty variable as a value, so t.Setenv(k, "") is not enough.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
http:
  host: "127.0.0.1"
  port: "9000"
tmdb:
  api_key: "file-key"
  language: "en-US"
books:
  lang_restrict: "en"
upstream:
  timeout: "3s"
  breaker_failures: 2
rate_limit:
  requests: 10
  window: "30s"
cors:
  allowed_origins: ["https://moodpick.example"]
`

const brokenYAML = `
env: [unclosed
`

func TestHTTPConfig_Addr(t *testing.T) {
	cfg := HTTPConfig{Host: "0.0.0.0", Port: "8080"}
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	unsetEnv(t, "ENV", "PORT", "HTTP_HOST", "TMDB_API_KEY", "TMDB_LANGUAGE", "TMDB_BASE_URL", "GOOGLE_BOOKS_LANG")
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, EnvProd, cfg.Env)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr())
	require.Equal(t, "file-key", cfg.TMDB.APIKey)
	require.Equal(t, "en-US", cfg.TMDB.Language)
	require.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	require.Equal(t, "en", cfg.Books.LangRestrict)
	require.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	require.EqualValues(t, 2, cfg.Upstream.BreakerFailures)
	require.Equal(t, 30*time.Second, cfg.Upstream.BreakerTimeout)
	require.Equal(t, 10, cfg.RateLimit.Requests)
	require.Equal(t, []string{"https://moodpick.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverlaysFile(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)
	t.Setenv("TMDB_API_KEY", "env-key")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.TMDB.APIKey)
}

func TestLoad_BrokenYAML(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_WithCONFIG_PATH(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "from_env.yaml", `env: "dev"`)
	t.Setenv("CONFIG_PATH", cfgPath)
	unsetEnv(t, "ENV")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
}

func TestLoad_WithLocalYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	unsetEnv(t, "CONFIG_PATH", "ENV")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, EnvProd, cfg.Env)
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "CONFIG_PATH", "ENV", "PORT", "TMDB_API_KEY", "TMDB_LANGUAGE", "GOOGLE_BOOKS_LANG", "UPSTREAM_TIMEOUT")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, EnvLocal, cfg.Env)
	require.Equal(t, "8080", cfg.HTTP.Port)
	require.Empty(t, cfg.TMDB.APIKey)
	require.Equal(t, "fr-FR", cfg.TMDB.Language)
	require.Equal(t, "fr", cfg.Books.LangRestrict)
	require.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
}

func TestLoad_InvalidEnvRejected(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", `env: "staging"`)
	unsetEnv(t, "ENV")

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid config")
}

func TestLoadClient_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "CONFIG_PATH", "ENV", "MOODPICK_DB_PATH", "MOODPICK_COUNTRY", "MOODPICK_TIMEOUT")
	t.Setenv("MOODPICK_SERVER_URL", "http://proxy.internal:9000")

	cfg, err := LoadClient("")
	require.NoError(t, err)
	require.Equal(t, "http://proxy.internal:9000", cfg.ServerURL)
	require.Equal(t, "moodpick.db", cfg.DBPath)
	require.Equal(t, "CA", cfg.Country)
	require.Equal(t, 15*time.Second, cfg.Timeout)
}

func TestMustLoad_Panics(t *testing.T) {
	require.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
