package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for our program, parsed from various sources
// The `mapstructure` tags are used to map the fields to the viper configuration
type Config struct {
	Parse          bool   `mapstructure:"parse"`
	Download       bool   `mapstructure:"download"`
	URLFile        string `mapstructure:"url-file"`
	DownloadFolder string `mapstructure:"download-folder"`
	ScanText       bool   `mapstructure:"scan-text"`
	RetryFailed    bool   `mapstructure:"retry-failed"`

	// Network
	UserAgent   string `mapstructure:"user-agent"`
	HTTPTimeout int    `mapstructure:"http-timeout"`
	MaxRetry    int    `mapstructure:"max-retry"`

	// Logging
	JSON     bool   `mapstructure:"json"`
	LogLevel string `mapstructure:"log-level"`
}

var (
	config *Config
	once   sync.Once
)

// InitConfig initializes the configuration
// Flags -> Env -> Config file
// Latest has precedence over the rest
func InitConfig() error {
	var err error
	once.Do(func() {
		config = &Config{}

		// Check if a config file is provided via flag
		if configFile := viper.GetString("config-file"); configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				err = homeErr
				return
			}

			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName("slackfetch")
		}

		viper.SetEnvPrefix("SLACKFETCH")
		replacer := strings.NewReplacer("-", "_", ".", "_")
		viper.SetEnvKeyReplacer(replacer)
		viper.AutomaticEnv()

		// A missing config file is fine, flags and env carry the defaults
		if readErr := viper.ReadInConfig(); readErr == nil {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}

		// Unmarshal the config into the Config struct
		err = viper.Unmarshal(config)
	})
	return err
}

// BindFlags binds the flags to the viper configuration
// This is needed because viper doesn't support same flag name accross multiple commands
// Details here: https://github.com/spf13/viper/issues/375#issuecomment-794668149
func BindFlags(flagSet *pflag.FlagSet) {
	flagSet.VisitAll(func(flag *pflag.Flag) {
		viper.BindPFlag(flag.Name, flag)
	})
}

// Get returns the config struct
func Get() *Config {
	return config
}
