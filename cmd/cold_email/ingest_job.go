package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-email-agent/internal/ingestion"
	"github.com/jonathan/cold-email-agent/internal/pipeline"
)

func newIngestJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest-job",
		Short: "Fetch and clean a careers page without calling the LLM",
		Long:  "Ingest a careers page from a URL, a text file or inline text, clean the content, and write the cleaned text with metadata.",
		RunE:  runIngestJob,
	}

	flags := cmd.Flags()
	addSourceFlags(flags)
	flags.StringP("out", "o", "", "Output directory (required)")
	return cmd
}

func runIngestJob(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	if e.cfg.OutputDir == "" {
		return errors.New("--out is required")
	}

	text, _ := cmd.Flags().GetString("text")
	cleaned, metadata, err := pipeline.Ingest(cmd.Context(), pipeline.Options{
		URL:        e.cfg.URL,
		File:       e.cfg.File,
		Text:       text,
		UseBrowser: e.cfg.UseBrowser,
		Logger:     e.logger,
	})
	if err != nil {
		return labeled(err)
	}

	if err := ingestion.WriteOutput(e.cfg.OutputDir, cleaned, metadata); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(e.out, "Successfully ingested page (%d chars)\n", metadata.Chars)
	fmt.Fprintf(e.out, "Cleaned text: %s\n", filepath.Join(e.cfg.OutputDir, ingestion.CleanedFileName))
	fmt.Fprintf(e.out, "Metadata: %s\n", filepath.Join(e.cfg.OutputDir, ingestion.MetadataFileName))
	return nil
}
