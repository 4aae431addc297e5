package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func stubHome(t *testing.T, dir string) {
	t.Helper()
	orig := userHomeDir
	userHomeDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userHomeDir = orig })
}

func TestExpandPath(t *testing.T) {
	stubHome(t, "/home/treasurer")
	t.Setenv("KASSA_TEST_DIR", "/srv/kassa")
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "tilde", input: "~", expected: "/home/treasurer"},
		{name: "tilde prefix", input: "~/ledger.db", expected: "/home/treasurer/ledger.db"},
		{name: "env var", input: "$KASSA_TEST_DIR/ledger.db", expected: "/srv/kassa/ledger.db"},
		{name: "braced env var", input: "${KASSA_TEST_DIR}/books/../ledger.db", expected: "/srv/kassa/ledger.db"},
		{name: "plain", input: "/tmp/ledger.db", expected: "/tmp/ledger.db"},
		{name: "relative", input: "data/ledger.db", expected: filepath.Join(wd, "data", "ledger.db")},
		{name: "tilde user is literal", input: "~bob/ledger.db", expected: filepath.Join(wd, "~bob", "ledger.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpandPath_NoHome(t *testing.T) {
	orig := userHomeDir
	userHomeDir = func() (string, error) { return "", errors.New("no home") }
	t.Cleanup(func() { userHomeDir = orig })

	_, err := ExpandPath("~/ledger.db")
	assert.Error(t, err)

	got, err := ExpandPath("/abs/ledger.db")
	require.NoError(t, err)
	assert.Equal(t, "/abs/ledger.db", got)
}

func TestDefaultConfigDir(t *testing.T) {
	stubHome(t, "/home/treasurer")

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/treasurer/.config/kassa", dir)

	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	dir, err = DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/etc/xdg/kassa", dir)

	t.Setenv("XDG_CONFIG_HOME", "relative/dir")
	dir, err = DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/treasurer/.config/kassa", dir)
}

func TestLoadRatesConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadRatesConfig(newViper())
		require.NoError(t, err)
		assert.Equal(t, DefaultRatesURL, cfg.URL)
		assert.Equal(t, 8*time.Second, cfg.Timeout)
		assert.Equal(t, 3, cfg.Retries)
		assert.Empty(t, cfg.RedisAddr)
		assert.Equal(t, 24*time.Hour, cfg.RedisTTL)
	})

	t.Run("overrides", func(t *testing.T) {
		v := newViper()
		v.Set(KeyRatesURL, "http://localhost:9000/rates")
		v.Set(KeyRatesTimeout, "2s")
		v.Set(KeyRatesRetries, 5)
		v.Set(KeyRedisAddr, "localhost:6379")
		v.Set(KeyRedisTTL, "1h")

		cfg, err := LoadRatesConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/rates", cfg.URL)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.Equal(t, 5, cfg.Retries)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, time.Hour, cfg.RedisTTL)
	})

	t.Run("invalid", func(t *testing.T) {
		for key, value := range map[string]any{
			KeyRatesURL:     "ftp://rates.example.com",
			KeyRatesRetries: 0,
			KeyRedisTTL:     "-1m",
		} {
			v := newViper()
			v.Set(key, value)
			_, err := LoadRatesConfig(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig, key)
		}
	})
}

func TestRequireEditor(t *testing.T) {
	v := newViper()
	assert.NoError(t, RequireEditor(v))

	v.Set(KeyRole, "Viewer")
	err := RequireEditor(v)
	assert.ErrorIs(t, err, common.ErrForbidden)

	v.Set(KeyRole, "admin")
	assert.ErrorIs(t, RequireEditor(v), common.ErrInvalidConfig)
}

func TestDatabasePath(t *testing.T) {
	stubHome(t, "/home/treasurer")
	t.Setenv("XDG_DATA_HOME", "")

	v := newViper()
	path, err := DatabasePath(v)
	require.NoError(t, err)
	assert.Equal(t, "/home/treasurer/.local/share/kassa/kassa.db", path)

	t.Setenv("XDG_DATA_HOME", "/data")
	path, err = DatabasePath(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/kassa/kassa.db", path)

	v.Set(KeyDatabasePath, "~/books/ledger.db")
	path, err = DatabasePath(v)
	require.NoError(t, err)
	assert.Equal(t, "/home/treasurer/books/ledger.db", path)
}
