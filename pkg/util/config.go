package util

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	ENV_PREFIX = "R5CC"
)

// ReadConfig. read config file into the global viper instance. empty configFile = ./data/config.{yaml,json,toml}
func ReadConfig(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./data/")
	}

	viper.SetEnvPrefix(ENV_PREFIX)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
