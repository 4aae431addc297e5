package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/rates"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath = "database.path"
	KeyRole         = "auth.role"
	KeyRatesURL     = "rates.url"
	KeyRatesTimeout = "rates.timeout"
	KeyRatesRetries = "rates.retries"
	KeyRedisAddr    = "redis.addr"
	KeyRedisTTL     = "redis.ttl"
)

// DefaultRatesURL is queried when rates.url is not set.
const DefaultRatesURL = "https://api.frankfurter.app/latest"

// Role decides whether a user may change the ledger.
type Role string

// Roles.
const (
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// RatesConfig configures exchange-rate synchronization.
type RatesConfig struct {
	URL       string
	RedisAddr string
	Timeout   time.Duration
	RedisTTL  time.Duration
	Retries   int
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRole, string(RoleEditor))
	v.SetDefault(KeyRatesURL, DefaultRatesURL)
	v.SetDefault(KeyRatesTimeout, rates.DefaultTimeout)
	v.SetDefault(KeyRatesRetries, 3)
	v.SetDefault(KeyRedisTTL, 24*time.Hour)
}

// DatabasePath returns the configured database location, or kassa.db in the
// user's data directory.
func DatabasePath(v *viper.Viper) (string, error) {
	if p := v.GetString(KeyDatabasePath); strings.TrimSpace(p) != "" {
		return ExpandPath(p)
	}
	dir, err := defaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kassa.db"), nil
}

// LoadRatesConfig reads and validates the rate settings.
func LoadRatesConfig(v *viper.Viper) (*RatesConfig, error) {
	cfg := &RatesConfig{
		URL:       strings.TrimSpace(v.GetString(KeyRatesURL)),
		Timeout:   v.GetDuration(KeyRatesTimeout),
		Retries:   v.GetInt(KeyRatesRetries),
		RedisAddr: strings.TrimSpace(v.GetString(KeyRedisAddr)),
		RedisTTL:  v.GetDuration(KeyRedisTTL),
	}

	if cfg.URL == "" {
		cfg.URL = DefaultRatesURL
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, fmt.Errorf("%w: %s must be an http(s) URL", common.ErrInvalidConfig, KeyRatesURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = rates.DefaultTimeout
	}
	if cfg.Retries < 1 {
		return nil, fmt.Errorf("%w: %s must be at least 1", common.ErrInvalidConfig, KeyRatesRetries)
	}
	if cfg.RedisTTL < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyRedisTTL)
	}
	return cfg, nil
}

// CurrentRole returns the configured role.
func CurrentRole(v *viper.Viper) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(v.GetString(KeyRole)))); r {
	case RoleEditor, RoleViewer:
		return r, nil
	case "":
		return RoleEditor, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", common.ErrInvalidConfig, r)
	}
}

// RequireEditor fails unless the configured role may change the ledger.
func RequireEditor(v *viper.Viper) error {
	role, err := CurrentRole(v)
	if err != nil {
		return err
	}
	if role != RoleEditor {
		return common.NewUserError("this command needs the editor role (auth.role)", common.ErrForbidden)
	}
	return nil
}
