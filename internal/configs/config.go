package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PolarWolf314/credshare/internal/utils"
)

const (
	// StoreDriverSQLite keeps the store in a SQLite file.
	StoreDriverSQLite = "sqlite"
	// StoreDriverPostgres keeps the store in a shared PostgreSQL database.
	StoreDriverPostgres = "postgres"

	// MinKeyBits is the smallest RSA modulus accepted for user keys.
	MinKeyBits = 2048

	configFileName = "config.toml"
)

type UserConfig struct {
	User    User          `toml:"user"`
	Store   StoreConfig   `toml:"store"`
	Vault   VaultConfig   `toml:"vault"`
	Sharing SharingConfig `toml:"sharing"`
}

type User struct {
	Email       string `toml:"email"`
	UUID        string `toml:"user_uuid"`
	DisplayName string `toml:"display_name"`
}

type StoreConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type VaultConfig struct {
	Path string `toml:"path"`
}

type SharingConfig struct {
	// DefaultTTL is a duration such as "72h" or "7d". Empty means shares never expire.
	DefaultTTL string `toml:"default_ttl"`
	KeyBits    int    `toml:"key_bits"`
}

// LoadUserConfig loads the user configuration from the config file.
// A missing file yields an empty config with defaults applied.
func LoadUserConfig() (*UserConfig, error) {
	configPath := filepath.Join(UserCredshareSettings.UserConfigsPath, configFileName)

	config := &UserConfig{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config.ApplyDefaults()
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	config.ApplyDefaults()
	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	configPath := filepath.Join(UserCredshareSettings.UserConfigsPath, configFileName)

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// GenerateUserUUID generates a new UUID for the user.
func GenerateUserUUID() string {
	return uuid.New().String()
}

// EnsureUserConfig ensures the user configuration exists and has a UUID.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if config.User.UUID == "" {
		config.User.UUID = GenerateUserUUID()
		if err := SaveUserConfig(config); err != nil {
			return nil, fmt.Errorf("failed to save user config: %w", err)
		}
	}

	return config, nil
}

// ApplyDefaults fills unset store, vault and sharing settings.
func (c *UserConfig) ApplyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverSQLite
	}
	if c.Store.DSN == "" && c.Store.Driver == StoreDriverSQLite {
		c.Store.DSN = filepath.Join(UserCredshareSettings.UserDataPath, "store.db")
	}
	if c.Vault.Path == "" {
		c.Vault.Path = filepath.Join(UserCredshareSettings.UserDataPath, "vault.toml")
	}
	if c.Sharing.KeyBits < MinKeyBits {
		c.Sharing.KeyBits = MinKeyBits
	}
}

// ResolveStore returns the store driver and DSN, letting CREDSHARE_STORE_DRIVER
// and CREDSHARE_STORE_DSN override the file values.
func (c *UserConfig) ResolveStore() (string, string, error) {
	driver := getenvDefault("CREDSHARE_STORE_DRIVER", c.Store.Driver)
	dsn := getenvDefault("CREDSHARE_STORE_DSN", c.Store.DSN)

	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case StoreDriverSQLite, StoreDriverPostgres:
	default:
		return "", "", fmt.Errorf("unsupported store driver %q", driver)
	}

	if strings.TrimSpace(dsn) == "" {
		return "", "", fmt.Errorf("store dsn is required for driver %q", driver)
	}

	return driver, dsn, nil
}

// DefaultTTL parses the configured default share lifetime. Zero means no expiry.
func (c *UserConfig) DefaultTTL() (time.Duration, error) {
	if strings.TrimSpace(c.Sharing.DefaultTTL) == "" {
		return 0, nil
	}
	ttl, err := utils.ParseDuration(c.Sharing.DefaultTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid default_ttl: %w", err)
	}
	if ttl < 0 {
		return 0, fmt.Errorf("invalid default_ttl %q: must not be negative", c.Sharing.DefaultTTL)
	}
	return ttl, nil
}

func getenvDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
