package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyHubURL = "hub_url"
	cfgKeyToken  = "token"
	cfgKeyPoll   = "poll_interval"

	defaultHubURL = "http://localhost:8333"
)

// defaultConfigYAML is written to the config directory on first run so users
// have a template to fill in.
const defaultConfigYAML = `# boardsync configuration

# Hub base URL
hub_url: http://localhost:8333

# Bearer token (your user id on the hub)
# token:

# Snapshot poll interval
poll_interval: 3s
`

// loadConfig fills unset App fields from the config file and environment.
// Flags win over env, env over file, file over defaults.
func (a *App) loadConfig() error {
	dir := a.ConfigDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".config", "boardsync")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(dir); err != nil {
		return fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyHubURL, defaultHubURL)
	v.SetDefault(cfgKeyPoll, "3s")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix("BOARDSYNC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if a.HubURL == "" {
		a.HubURL = v.GetString(cfgKeyHubURL)
	}
	if a.Token == "" {
		a.Token = v.GetString(cfgKeyToken)
	}
	if a.PollInterval == 0 {
		if d, err := time.ParseDuration(v.GetString(cfgKeyPoll)); err == nil {
			a.PollInterval = d
		}
	}
	return nil
}

func ensureDefaultConfigFile(dir string) error {
	path := filepath.Join(dir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
