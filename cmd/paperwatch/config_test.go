// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// resetViper isolates a test from ambient config files and prior viper
// state: the config flag points at a file that does not exist.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	require.NoError(t, rootCmd.PersistentFlags().Set("config", filepath.Join(t.TempDir(), "paperwatch.yaml")))
	t.Cleanup(func() {
		viper.Reset()
		rootCmd.PersistentFlags().Set("config", "")
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)
	initConfig()

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("PAPERWATCH_EMBEDDING_API_KEY", "key-from-env")
	t.Setenv("PAPERWATCH_RANKING_SELECTION_TOP_K", "5")
	initConfig()

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)

	assert.Equal(t, "key-from-env", cfg.Embedding.APIKey)
	assert.Equal(t, 5, cfg.Ranking.Selection.TopK)
	assert.Equal(t, "voyage-3.5", cfg.Embedding.Model, "untouched keys keep their defaults")
}

func TestLoadConfigFileAndEnvLayering(t *testing.T) {
	resetViper(t)

	cfgPath := filepath.Join(t.TempDir(), "paperwatch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("embedding:\n  model: voyage-3-lite\n  api_key: key-from-file\n"), 0o644))
	require.NoError(t, rootCmd.PersistentFlags().Set("config", cfgPath))
	t.Setenv("PAPERWATCH_EMBEDDING_API_KEY", "key-from-env")
	initConfig()

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)

	assert.Equal(t, "voyage-3-lite", cfg.Embedding.Model, "file overrides the default")
	assert.Equal(t, "key-from-env", cfg.Embedding.APIKey, "environment overrides the file")
}

func TestLoadConfigDataDirFlag(t *testing.T) {
	resetViper(t)
	initConfig()

	// loadConfig reads flags via cmd.Flags(), which only contains
	// persistent flags after cobra merges them during Execute;
	// LocalFlags triggers that merge without running a command.
	rootCmd.LocalFlags()
	require.NoError(t, rootCmd.PersistentFlags().Set("data-dir", "/tmp/elsewhere"))
	t.Cleanup(func() { rootCmd.PersistentFlags().Set("data-dir", "") })

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere", cfg.DataDir)
}
