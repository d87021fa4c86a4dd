package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/credshare/internal/utils"
)

type UserSettings struct {
	UserKeysPath    string
	UserConfigsPath string
	UserDataPath    string
	Username        string
}

var UserCredshareSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")

	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		log.Fatalf("error getting username: %s", err)
	}

	UserCredshareSettings = &UserSettings{
		UserKeysPath:    filepath.Join(dataDir, "credshare", "keys"),
		UserConfigsPath: filepath.Join(configDir, "credshare"),
		UserDataPath:    filepath.Join(dataDir, "credshare"),
		Username:        username,
	}
}

// UseRoot points every settings path below root. Tests and --home use it.
func UseRoot(root string) {
	UserCredshareSettings = &UserSettings{
		UserKeysPath:    filepath.Join(root, "data", "keys"),
		UserConfigsPath: filepath.Join(root, "config"),
		UserDataPath:    filepath.Join(root, "data"),
		Username:        UserCredshareSettings.Username,
	}
}
