// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/library"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the reference library and interest profile",
	Long: `Profile manages the local reference library and the interest profile
derived from it. Import a YAML export of your library, build the profile
to embed every paper into the vector index, and show the resulting
author and venue statistics.`,
}

// --- import subcommand ---

var profileImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a YAML library export into the local database",
	Long: `Import reads a YAML list of papers and upserts them into the library
database, keyed by normalized identifier. Re-importing the same file is
safe; existing records are updated in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileImport,
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening library file: %w", err)
	}
	defer f.Close()

	papers, err := library.ReadPapersYAML(f)
	if err != nil {
		return err
	}

	store, err := library.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Import(cmd.Context(), papers, os.Stdout)
	return err
}

// --- build subcommand ---

var profileBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed the library and build the interest profile",
	Long: `Build embeds every library paper, writes the vector index and derives
the interest profile: the centroid of your library's embeddings plus
author and venue frequencies and whitelists.

Requires the embedding API key, usually via PAPERWATCH_EMBEDDING_API_KEY.`,
	RunE: runProfileBuild,
}

func runProfileBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := library.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	// Library embeddings never expire; the index is rebuilt wholesale.
	embedder, cache, err := buildEmbedder(cfg.Embedding, cfg.DataDir, 0)
	if err != nil {
		return err
	}
	defer cache.Close()

	profile, _, err := library.BuildProfile(ctx, store, embedder, cfg.Profile, cfg.DataDir, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("profile built from %d papers: %d authors, %d venues, %d whitelisted authors\n",
		profile.PaperCount, len(profile.AuthorCounts), len(profile.VenueCounts), len(profile.WhitelistAuthors))
	return nil
}

// --- show subcommand ---

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current interest profile as YAML",
	RunE:  runProfileShow,
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := library.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	profile, _, err := library.LoadProfile(cmd.Context(), store, cfg.Profile, cfg.DataDir)
	if err != nil {
		return err
	}
	return library.WriteProfileYAML(profile, os.Stdout)
}

func init() {
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileBuildCmd)
	profileCmd.AddCommand(profileShowCmd)

	rootCmd.AddCommand(profileCmd)
}
