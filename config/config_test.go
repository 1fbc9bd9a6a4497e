package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcelsud/wallet-connector/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("success - defaults without a file", func(t *testing.T) {
		cfg, err := config.Load(t.TempDir())

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, config.BackendMemory, cfg.WalletBackend)
		assert.Equal(t, "bank-connector", cfg.WalletNamespace)
		assert.Equal(t, 5*time.Minute, cfg.GetRetention())
		assert.Equal(t, 30*time.Second, cfg.GetUpstreamTimeout())
		assert.Equal(t, 10*time.Second, cfg.GetCallbackTimeout())
		assert.Equal(t, "1.0.0", cfg.ConnectorVersion)
	})

	t.Run("success - file values overridden by environment", func(t *testing.T) {
		dir := t.TempDir()
		content := "PORT = \"9090\"\nWALLET_BACKEND = \"redis\"\nREDIS_DB = 2\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
		t.Setenv("PORT", "7070")
		t.Setenv("API_TOKENS", "a, b,,c")

		cfg, err := config.Load(dir)

		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Port)
		assert.Equal(t, config.BackendRedis, cfg.WalletBackend)
		assert.Equal(t, 2, cfg.RedisDB)
		assert.Equal(t, []string{"a", "b", "c"}, cfg.GetAPITokens())
	})

	t.Run("error - malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT = = ="), 0o600))

		_, err := config.Load(dir)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := config.Config{UpstreamBaseURL: "https://bank", APITokens: "t", WalletBackend: config.BackendMemory}

	t.Run("success", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("error - backend requirements", func(t *testing.T) {
		c := valid
		c.WalletBackend = config.BackendPostgres
		assert.ErrorContains(t, c.Validate(), "POSTGRES_DSN")

		c.WalletBackend = "s3"
		assert.ErrorContains(t, c.Validate(), "unknown WALLET_BACKEND")
	})

	t.Run("error - missing upstream and tokens", func(t *testing.T) {
		err := (&config.Config{WalletBackend: config.BackendMemory}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UPSTREAM_BASE_URL")
		assert.Contains(t, err.Error(), "API_TOKENS")
	})

	t.Run("error - signing secret without prefix", func(t *testing.T) {
		c := valid
		c.CallbackSigningSecret = "plain"
		assert.ErrorContains(t, c.Validate(), "CALLBACK_SIGNING_SECRET")
	})
}
