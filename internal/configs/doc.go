// Package configs manages the local user's configuration for credshare.
//
// Configuration is stored in TOML format in the user config directory:
//
//	~/.config/credshare/config.toml
//
// # User Configuration
//
// The config stores:
//   - User identity (email, display name, UUID)
//   - Store settings (driver "sqlite" or "postgres", DSN)
//   - Vault file location
//   - Sharing defaults (default share TTL, RSA key size)
//
// The user UUID is auto-generated on first use and is the user's id in the
// shared directory. CREDSHARE_STORE_DRIVER and CREDSHARE_STORE_DSN override
// the store settings, which lets several local users point at one database.
//
// # Settings
//
// UserCredshareSettings holds the paths used by the rest of the program:
//   - UserKeysPath: per-user RSA key material ($XDG_DATA_HOME/credshare/keys)
//   - UserConfigsPath: config.toml location
//   - UserDataPath: default sqlite store and vault file location
//
// UseRoot relocates all of them under one directory.
package configs
