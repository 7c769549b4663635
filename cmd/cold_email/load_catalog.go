package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-email-agent/internal/linkindex"
)

func newLoadCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-catalog",
		Short: "Embed the portfolio catalog into the vector store",
		Long: "Load the portfolio CSV and seed the vector store used for semantic link matching. " +
			"A collection that already holds documents is left unchanged.",
		RunE: runLoadCatalog,
	}

	flags := cmd.Flags()
	addIndexFlags(flags)
	addLLMFlags(flags)
	return cmd
}

func runLoadCatalog(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()
	ctx := cmd.Context()

	if e.cfg.Catalog == "" {
		return errors.New("--catalog is required")
	}
	if e.cfg.VectorStore == "" {
		return errors.New("--vector-store is required")
	}

	client, err := newLLMClient(ctx, e.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	index, err := openIndex(ctx, e.cfg, client, e.logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	defer func() { _ = index.Close() }()

	if index.Backend() != linkindex.BackendSemantic {
		return fmt.Errorf("vector store %s could not be seeded; see the log for details", e.cfg.VectorStore)
	}
	fmt.Fprintf(e.out, "Catalog %s loaded into %s (collection %q)\n", e.cfg.Catalog, e.cfg.VectorStore, e.cfg.Collection)
	return nil
}
