package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-email-agent/internal/extraction"
	"github.com/jonathan/cold-email-agent/internal/ingestion"
	"github.com/jonathan/cold-email-agent/internal/pipeline"
)

func newExtractJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract-jobs",
		Short: "Extract structured job postings from a careers page",
		Long:  "Read a careers page and print the job postings found on it as a JSON array of {role, experience, skills, description}.",
		RunE:  runExtractJobs,
	}

	flags := cmd.Flags()
	addSourceFlags(flags)
	addLLMFlags(flags)
	flags.Int("max-input-chars", 120_000, "Reject page text longer than this many characters (negative disables)")
	flags.StringP("output", "o", "", "Write the JSON to this file instead of stdout")
	return cmd
}

func runExtractJobs(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()
	ctx := cmd.Context()

	text, _ := cmd.Flags().GetString("text")
	pageText, _, err := pipeline.Ingest(ctx, pipeline.Options{
		URL:        e.cfg.URL,
		File:       e.cfg.File,
		Text:       text,
		UseBrowser: e.cfg.UseBrowser,
		Logger:     e.logger,
	})
	if err != nil {
		return labeled(err)
	}

	client, err := newLLMClient(ctx, e.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	extractor := extraction.New(client, extraction.Options{
		MaxInputChars: e.cfg.MaxInputChars,
		Logger:        e.logger,
	})
	jobs, err := extractor.ExtractJobs(ctx, ingestion.CollapseWhitespace(pageText))
	if err != nil {
		return labeled(err)
	}
	if e.printer != nil {
		e.printer.PrintJobPostings(jobs)
	}

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job postings: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Fprintln(e.out, string(data))
		return nil
	}
	if err := os.WriteFile(output, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(e.out, "Extracted %d job postings to %s\n", len(jobs), output)
	return nil
}
