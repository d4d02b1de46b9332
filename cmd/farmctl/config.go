package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix = "FARMCTL"

	cfgKeyDBPath            = "db_path"
	cfgKeyVerbose           = "verbose"
	cfgKeyLegacyMonthWindow = "legacy_month_window"
	cfgKeyOutput            = "output"

	defaultDBPath = "farm.db"
	defaultOutput = outputText
)

type config struct {
	DBPath            string
	Verbose           bool
	LegacyMonthWindow bool
	Output            string
}

// newViper returns a Viper with defaults and FARMCTL_* environment lookup.
// Flags are bound by the caller.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyDBPath, defaultDBPath)
	v.SetDefault(cfgKeyVerbose, false)
	v.SetDefault(cfgKeyLegacyMonthWindow, false)
	v.SetDefault(cfgKeyOutput, defaultOutput)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads configFile, if given, and resolves the effective settings.
// Precedence: flag > env > config file > default.
func loadConfig(v *viper.Viper, configFile string) (*config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &config{
		DBPath:            v.GetString(cfgKeyDBPath),
		Verbose:           v.GetBool(cfgKeyVerbose),
		LegacyMonthWindow: v.GetBool(cfgKeyLegacyMonthWindow),
		Output:            v.GetString(cfgKeyOutput),
	}
	if cfg.DBPath == "" {
		return nil, usageErrorf("db_path must not be empty")
	}
	if !validOutput(cfg.Output) {
		return nil, usageErrorf("unknown output format %q (valid: %s)", cfg.Output, strings.Join(outputFormats, ", "))
	}
	return cfg, nil
}
