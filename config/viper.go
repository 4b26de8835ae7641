// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// BuildViper binds fs and the environment to a new viper instance. A config
// file is read when one is given by flag or environment variable.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Flags are capitalized and hyphens are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if err := v.BindEnv(ConfigFileKey, ConfigFileEnvKey); err != nil {
		return nil, err
	}

	if !v.IsSet(ConfigFileKey) || v.GetString(ConfigFileKey) == "" {
		return v, nil
	}
	filename := getExpandedPath(v, ConfigFileKey)
	v.SetConfigFile(filename)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(APIPortKey, defaultAPIPort)
	v.SetDefault(MetricsPortKey, defaultMetricsPort)
	v.SetDefault(NetworkKey, defaultNetwork)
	v.SetDefault(ContractAddressKey, defaultContractAddress())
}

// BuildConfig constructs the config using Viper.
// The following precedence order is used. Each item takes precedence over the item below it:
//  1. Flags
//  2. Environment
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	if cfg.KeyCacheDir != "" {
		cfg.KeyCacheDir = getExpandedPath(v, KeyCacheDirKey)
	}
	return cfg, nil
}

// getExpandedPath gets the string in viper corresponding to [key] and expands
// any variables using the OS env.
func getExpandedPath(v *viper.Viper, key string) string {
	return os.Expand(
		v.GetString(key),
		func(strVar string) string {
			return os.Getenv(strVar)
		},
	)
}
