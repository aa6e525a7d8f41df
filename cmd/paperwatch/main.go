// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperwatch CLI: a literature
// watcher that fetches new papers, ranks them against the user's
// reference library, and reports the ones worth reading.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paperwatch CLI.
var rootCmd = &cobra.Command{
	Use:   "paperwatch",
	Short: "Watch the literature and rank new papers against your library",
	Long: `paperwatch keeps up with the literature for you. It imports your
reference library, builds an interest profile from it, fetches newly
published papers from arXiv and Crossref, and ranks each candidate by
similarity to your interests, recency, citations, and venue quality.

Run "paperwatch profile import" and "paperwatch profile build" once,
then "paperwatch watch" on whatever cadence suits you.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperwatch.yaml or ~/.config/paperwatch/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "override the data directory")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperwatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperwatch"))
		}
	}

	viper.SetEnvPrefix("PAPERWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
