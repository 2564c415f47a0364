package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "https://query1.finance.yahoo.com", config.Clients.Yahoo.BaseURL)
	assert.Equal(t, 5, config.Clients.Yahoo.RateLimit)
	assert.Equal(t, 10, config.Risk.MaxVolatilitySymbols)
	assert.Equal(t, "1mo", config.Risk.HistoryPeriod)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig("/nonexistent/thrive.toml")
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thrive.toml")
	content := `
environment = "production"

[server]
host = "127.0.0.1"
port = 9090

[clients.yahoo]
base_url = "http://localhost:8899"
rate_limit = 2
timeout = "3s"

[risk]
max_volatility_symbols = 5
history_period = "3mo"
fetch_timeout = "2s"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.IsProduction())
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "http://localhost:8899", config.Clients.Yahoo.BaseURL)
	assert.Equal(t, 2, config.Clients.Yahoo.RateLimit)
	assert.Equal(t, 3*time.Second, config.Clients.Yahoo.GetTimeout())
	assert.Equal(t, 5, config.Risk.MaxVolatilitySymbols)
	assert.Equal(t, "3mo", config.Risk.HistoryPeriod)
	assert.Equal(t, 2*time.Second, config.Risk.GetFetchTimeout())
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thrive.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 3000\n"), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "https://query1.finance.yahoo.com", config.Clients.Yahoo.BaseURL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("THRIVE_ENV", "production")
	t.Setenv("THRIVE_PORT", "7070")
	t.Setenv("THRIVE_LOG_LEVEL", "trace")
	t.Setenv("THRIVE_YAHOO_BASE_URL", "http://localhost:1234")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "trace", config.Logging.Level)
	assert.Equal(t, "http://localhost:1234", config.Clients.Yahoo.BaseURL)
}

func TestLoadConfig_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("THRIVE_PORT", "not-a-port")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestResolveGeminiAPIKey_Priority(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("THRIVE_GEMINI_API_KEY", "thrive-key")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	assert.Equal(t, "thrive-key", ResolveGeminiAPIKey())

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	assert.Equal(t, "gemini-key", ResolveGeminiAPIKey())
}

func TestGetTimeout_InvalidDurationFallsBack(t *testing.T) {
	c := YahooConfig{Timeout: "banana"}
	assert.Equal(t, 10*time.Second, c.GetTimeout())

	r := RiskConfig{FetchTimeout: ""}
	assert.Equal(t, 5*time.Second, r.GetFetchTimeout())
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.True(t, (&Config{Environment: "PROD"}).IsProduction())
	assert.False(t, (&Config{Environment: "development"}).IsProduction())
	assert.False(t, (&Config{Environment: ""}).IsProduction())
}
