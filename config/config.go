package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/freetocompute/pgpkeeper/config/configkey"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var loadConfigMutex sync.Mutex
var configLoaded bool

var DefaultValues = map[string]interface{}{
	configkey.LogLevel:      "warn",
	configkey.DebugMode:     false,
	configkey.DatabasePath:  "",
	configkey.KeyserverURL:  "https://keys.openpgp.org",
	configkey.EditorCommand: "",
	configkey.RelayPort:     8850,
}

func LoadConfig() {
	loadConfigMutex.Lock()
	defer loadConfigMutex.Unlock()
	if !configLoaded {
		configLoaded = true

		explicitConfigFile := os.Getenv("CONFIG_FILE")
		if explicitConfigFile != "" {
			fmt.Printf("CONFIG_FILE: %s\n", explicitConfigFile)
			viper.SetConfigFile(explicitConfigFile)
		} else {
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
			viper.AddConfigPath(DataDir())
		}

		// set defaults first
		for key, val := range DefaultValues {
			viper.SetDefault(key, val)
		}

		viper.SetEnvPrefix("pgpkeeper")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		err := viper.ReadInConfig()
		if err != nil {
			logrus.Debug("Config file not found, using defaults")
		}
	}
}

// DataDir is where the key database and config file live.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".pgpkeeper")
}

// DatabasePath resolves the configured database path, falling back to
// pgpkeeper.db inside the data directory.
func DatabasePath() string {
	if p := viper.GetString(configkey.DatabasePath); p != "" {
		return p
	}
	return filepath.Join(DataDir(), "pgpkeeper.db")
}
