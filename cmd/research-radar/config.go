// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-radar/internal/store"
	"github.com/pdiddy/research-radar/pkg/types"
)

const (
	configName      = "research-radar"
	envPrefix       = "RESEARCH_RADAR"
	defaultArxivURL = "https://export.arxiv.org/api/query"
)

// setDefaults registers every key so environment variables and Unmarshal
// see the full tree even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("store.driver", string(types.DriverSQLite))
	v.SetDefault("store.path", store.DefaultPath)
	v.SetDefault("store.dsn", "")

	v.SetDefault("sources.http.timeout", 30*time.Second)
	v.SetDefault("sources.http.user_agent", "research-radar/"+version)
	v.SetDefault("sources.retry.max_retries", 3)
	v.SetDefault("sources.retry.base_delay", 2*time.Second)
	v.SetDefault("sources.arxiv.enabled", true)
	v.SetDefault("sources.arxiv.base_url", defaultArxivURL)
	v.SetDefault("sources.arxiv.max_results", 10)
	v.SetDefault("sources.github.enabled", true)
	v.SetDefault("sources.github.base_url", "")
	v.SetDefault("sources.github.max_results", 10)
	v.SetDefault("sources.github.token", "")
	v.SetDefault("sources.github.rate_per_second", 0.5)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{})
}

// configureViper wires defaults, the config file search path and the
// environment into v. It returns the config file used, if any. A missing
// config file is not an error.
func configureViper(v *viper.Viper, cfgFile string) (string, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", err
	}
	return v.ConfigFileUsed(), nil
}

// bindFlags binds each viper key to the named flag.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if f := flags.Lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// loadConfig decodes v into a Config and checks the values that would
// otherwise fail late.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}

	c.Store.Driver = types.StoreDriver(strings.ToLower(string(c.Store.Driver)))
	switch c.Store.Driver {
	case types.DriverSQLite, types.DriverPostgres:
	default:
		return c, fmt.Errorf("store.driver: unknown driver %q (want sqlite or postgres)", c.Store.Driver)
	}
	if c.Store.Driver == types.DriverPostgres && strings.TrimSpace(c.Store.DSN) == "" {
		return c, errors.New("store.dsn is required when store.driver is postgres")
	}
	if c.Sources.HTTP.Timeout < 0 {
		return c, fmt.Errorf("sources.http.timeout must not be negative, got %s", c.Sources.HTTP.Timeout)
	}
	return c, nil
}
