package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/pipeline"
	"github.com/jonathan/cold-email-agent/internal/types"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one cold email per job posting on a careers page",
		Long: "Fetch or read a careers page, extract its job postings, match portfolio links to each " +
			"posting's skills and compose a tailored email for every posting.",
		Example: "  cold_email generate --url https://example.com/careers --profile me.json --catalog portfolio.csv",
		RunE:    runGenerate,
	}

	flags := cmd.Flags()
	addSourceFlags(flags)
	addIndexFlags(flags)
	addLLMFlags(flags)
	flags.StringP("profile", "p", "", "User profile JSON file (name and email required)")
	flags.StringP("instruction", "i", "", "Extra instruction for the email writer")
	flags.IntP("limit", "n", 2, "Portfolio links per email")
	flags.Int("concurrency", 1, "Number of emails composed in parallel")
	flags.Int("max-input-chars", 120_000, "Reject page text longer than this many characters (negative disables)")
	flags.StringP("out", "o", "", "Directory to write cold_email_<role>.txt files to")
	flags.String("database-url", "", "PostgreSQL URL for storing runs and drafts")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()
	cfg := e.cfg
	ctx := cmd.Context()

	if cfg.Profile == "" {
		return errors.New("--profile is required")
	}
	profile, err := types.LoadUserProfile(cfg.Profile)
	if err != nil {
		return fmt.Errorf("%s: %w", pipeline.LabelValidation, err)
	}
	if err := profile.Validate(); err != nil {
		return labeled(err)
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	index, err := openIndex(ctx, cfg, client, e.logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if index != nil {
		defer func() { _ = index.Close() }()
		e.logger.Info("link index ready", zap.String("backend", string(index.Backend())))
	}

	text, _ := cmd.Flags().GetString("text")
	opts := pipeline.Options{
		URL:             cfg.URL,
		File:            cfg.File,
		Text:            text,
		Profile:         *profile,
		Instruction:     cfg.Instruction,
		Limit:           cfg.Limit,
		Concurrency:     cfg.Concurrency,
		MaxInputChars:   cfg.MaxInputChars,
		Client:          client,
		CompositionTier: compositionTier(cfg),
		Index:           index,
		OutputDir:       cfg.OutputDir,
		UseBrowser:      cfg.UseBrowser,
		Logger:          e.logger,
		Printer:         e.printer,
	}
	if database := openStore(ctx, cfg, e.logger); database != nil {
		defer database.Close()
		opts.Store = database
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return labeled(err)
	}

	for _, job := range result.Jobs {
		fmt.Fprintf(e.out, "=== %s ===\n%s\n\n", job.Job.Role, job.Draft.Body)
	}
	for _, file := range result.Files() {
		fmt.Fprintf(e.out, "Saved: %s\n", file)
	}
	if e.printer != nil {
		e.printer.PrintRunSummary(len(result.Jobs), result.Degraded(), result.Files())
	}
	return nil
}
