// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/embedding"
	"github.com/pdiddy/paperwatch/internal/fetch"
	"github.com/pdiddy/paperwatch/internal/library"
	"github.com/pdiddy/paperwatch/internal/rank"
	"github.com/pdiddy/paperwatch/internal/vecindex"
	"github.com/pdiddy/paperwatch/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Fetch new papers and rank them against your interest profile",
	Long: `Watch runs the full pipeline: fetch recent papers from the enabled
sources, drop the ones already in your library, score the rest against
your interest profile, and print the top candidates with must-read,
consider, or ignore labels.

Requires a built profile; run "paperwatch profile build" first.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	profile, idx, err := library.LoadProfile(ctx, store, cfg.Profile, cfg.DataDir)
	if err != nil {
		if errors.Is(err, vecindex.ErrIndexNotFound) {
			return fmt.Errorf("no interest profile found in %s: run \"paperwatch profile build\" first", cfg.DataDir)
		}
		return err
	}

	quality, err := rank.LoadQualityTable(cfg.Ranking.Signals.QualityTablePath)
	if err != nil {
		return err
	}

	embedder, cache, err := buildEmbedder(cfg.Embedding, cfg.DataDir, cfg.Embedding.CandidateTTLDays)
	if err != nil {
		return err
	}
	defer cache.Close()

	ranker, err := rank.NewRanker(cfg.Ranking, profile, embedder, idx, quality)
	if err != nil {
		return err
	}

	out, err := fetch.FetchAll(ctx, fetch.BuildSources(cfg.Sources), os.Stderr)
	if err != nil {
		return err
	}
	if out.DupsMerged > 0 {
		fmt.Fprintf(os.Stderr, "merged %d duplicate records across sources\n", out.DupsMerged)
	}

	result, err := ranker.Run(ctx, out.Candidates, store, os.Stderr)
	if err != nil {
		return err
	}

	if removed, err := cache.CleanupExpired(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: embedding cache cleanup failed: %v\n", err)
	} else if removed > 0 {
		fmt.Fprintf(os.Stderr, "expired %d cached embeddings\n", removed)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		rank.FormatTable(result, os.Stdout)
		return nil
	case "json":
		return rank.FormatJSON(result, os.Stdout)
	case "yaml":
		return rank.FormatYAML(result, os.Stdout)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}
}

// buildEmbedder wires the HTTP embedding provider behind the SQLite
// cache. Library embeddings are cached without expiry; candidate
// embeddings use the configured TTL.
func buildEmbedder(cfg types.EmbeddingConfig, dataDir string, ttlDays int) (embedding.Provider, *embedding.Cache, error) {
	provider, err := embedding.NewHTTPProvider(&http.Client{Timeout: cfg.Timeout}, cfg)
	if err != nil {
		return nil, nil, err
	}
	cache, err := embedding.OpenCache(dataDir)
	if err != nil {
		return nil, nil, err
	}
	return embedding.NewCachingProvider(provider, cache, ttlDays, os.Stderr), cache, nil
}

func init() {
	watchCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(watchCmd)
}
