// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// loadConfig layers the config file and environment overrides on top of
// the defaults. The embedding API key usually arrives via
// PAPERWATCH_EMBEDDING_API_KEY rather than the config file.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := registerDefaults(cfg); err != nil {
		return types.Config{}, fmt.Errorf("registering configuration defaults: %w", err)
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// registerDefaults makes every configuration key known to viper. Viper's
// AutomaticEnv only consults the environment for keys it already knows
// about, so PAPERWATCH_* variables for keys absent from the config file
// would otherwise never be seen.
func registerDefaults(cfg types.Config) error {
	var raw map[string]any
	if err := mapstructure.Decode(cfg, &raw); err != nil {
		return err
	}
	setDefaults("", raw)
	return nil
}

func setDefaults(prefix string, values map[string]any) {
	for key, val := range values {
		if prefix != "" {
			key = prefix + "." + key
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, val)
	}
}
