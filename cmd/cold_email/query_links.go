package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/config"
	"github.com/jonathan/cold-email-agent/internal/linkindex"
	"github.com/jonathan/cold-email-agent/internal/llm"
)

func newQueryLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query-links",
		Short: "Print the portfolio links that best match a set of skills",
		Long: "Query the portfolio catalog for the links that best match the given skills. " +
			"Semantic matching is used when an API key and a vector store are available; otherwise skills are matched lexically.",
		Example: "  cold_email query-links --catalog portfolio.csv --skills Python,SQL --limit 2",
		RunE:    runQueryLinks,
	}

	flags := cmd.Flags()
	addIndexFlags(flags)
	flags.StringSliceP("skills", "s", nil, "Skills to match (comma separated or repeated)")
	flags.IntP("limit", "n", 2, "Maximum number of links")
	return cmd
}

func runQueryLinks(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()
	ctx := cmd.Context()

	if e.cfg.Catalog == "" {
		return errors.New("--catalog is required")
	}
	skills, _ := cmd.Flags().GetStringSlice("skills")

	index, closeEmbedder, err := openQueryIndex(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer closeEmbedder()
	defer func() { _ = index.Close() }()

	links := index.Query(ctx, skills, e.cfg.Limit)
	e.logger.Debug("queried links",
		zap.String("backend", string(index.Backend())),
		zap.Strings("skills", skills),
		zap.Int("found", len(links)))

	if e.printer != nil {
		e.printer.PrintLinks(fmt.Sprintf("skills: %v", skills), links)
		return nil
	}
	for _, link := range links {
		fmt.Fprintln(e.out, link)
	}
	return nil
}

// openQueryIndex uses an embedder only when one can be built; a missing API key
// simply means lexical matching.
func openQueryIndex(ctx context.Context, cfg *config.Config, logger *zap.Logger) (linkindex.Index, func(), error) {
	var embedder llm.Embedder
	closeEmbedder := func() {}

	if cfg.APIKey != "" && cfg.VectorStore != "" {
		client, err := newLLMClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		embedder = client
		closeEmbedder = func() { _ = client.Close() }
	}

	index, err := openIndex(ctx, cfg, embedder, logger)
	if err != nil {
		closeEmbedder()
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return index, closeEmbedder, nil
}
