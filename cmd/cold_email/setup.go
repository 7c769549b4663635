package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/config"
	"github.com/jonathan/cold-email-agent/internal/db"
	"github.com/jonathan/cold-email-agent/internal/linkindex"
	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/logging"
	"github.com/jonathan/cold-email-agent/internal/observability"
	"github.com/jonathan/cold-email-agent/internal/pipeline"
)

// env is what every command needs after flag parsing.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	printer *observability.Printer
	out     io.Writer
}

func setup(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithFlags(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		JSON:    cfg.JSONLogs,
		Verbose: cfg.Verbose,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}
	if cfg.Verbose {
		e.printer = observability.NewPrinter(e.out)
	}
	return e, nil
}

// addSourceFlags registers the page source flags shared by several commands.
func addSourceFlags(flags *pflag.FlagSet) {
	flags.StringP("url", "u", "", "Careers page URL")
	flags.StringP("file", "f", "", "Local file containing the page text")
	flags.String("text", "", "Page text passed inline")
	flags.Bool("use-browser", false, "Render client-side pages in a headless browser when static HTML has too little text")
}

// addIndexFlags registers the portfolio catalog flags.
func addIndexFlags(flags *pflag.FlagSet) {
	flags.StringP("catalog", "c", "", "Portfolio CSV with Techstack and Links columns")
	flags.String("vector-store", ".vectors.db", "Vector store file for semantic matching; empty disables it")
	flags.String("collection", linkindex.DefaultCollection, "Vector store collection name")
}

// addLLMFlags registers the model selection flags.
func addLLMFlags(flags *pflag.FlagSet) {
	flags.String("extraction-model", "", "Model used to extract job postings, and to write emails unless --model is set")
	flags.String("model", "", "Model used to write emails")
	flags.Float64("temperature", 0, "Sampling temperature")
	flags.Int("rpm", 0, "Maximum LLM requests per minute (0 = unlimited)")
}

func llmConfig(cfg *config.Config) *llm.Config {
	c := llm.DefaultConfig()
	if cfg.LLM.ExtractionModel != "" {
		c = c.WithModel(llm.TierStandard, cfg.LLM.ExtractionModel)
	}
	if cfg.LLM.CompositionModel != "" {
		c = c.WithModel(llm.TierAdvanced, cfg.LLM.CompositionModel)
	}
	if cfg.LLM.EmbeddingModel != "" {
		c = c.WithEmbeddingModel(cfg.LLM.EmbeddingModel)
	}
	c.Temperature = float32(cfg.LLM.Temperature)
	c.RequestsPerMinute = cfg.LLM.RequestsPerMinute
	return c
}

// compositionTier picks the tier whose model the user overrode for emails.
func compositionTier(cfg *config.Config) llm.ModelTier {
	if cfg.LLM.CompositionModel != "" {
		return llm.TierAdvanced
	}
	return llm.TierStandard
}

// llmClient is a generation client that can also embed.
type llmClient interface {
	llm.Client
	llm.Embedder
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llmClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	c := llmConfig(cfg)
	client, err := llm.NewClient(ctx, c, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	if c.RequestsPerMinute > 0 {
		return llm.NewLimitedClient(client, c.RequestsPerMinute), nil
	}
	return client, nil
}

// openIndex loads the catalog into a link index. Without a catalog there is no index.
// The semantic backend is used only when an embedder and a store path are both present.
func openIndex(ctx context.Context, cfg *config.Config, embedder llm.Embedder, logger *zap.Logger) (linkindex.Index, error) {
	if cfg.Catalog == "" {
		return nil, nil
	}
	records, err := linkindex.LoadCatalogFile(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return linkindex.Open(ctx, linkindex.Options{
		Embedder:   embedder,
		StorePath:  cfg.VectorStore,
		Collection: cfg.Collection,
		Dimensions: llm.DefaultEmbeddingDimensions,
		Logger:     logger,
	}, records)
}

// openStore connects to PostgreSQL when configured. Connection problems are logged
// and the run continues without persistence.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) *db.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("failed to connect to database, continuing without persistence", zap.Error(err))
		return nil
	}
	if err := database.EnsureSchema(ctx); err != nil {
		logger.Warn("failed to prepare database schema, continuing without persistence", zap.Error(err))
		database.Close()
		return nil
	}
	logger.Debug("connected to database")
	return database
}

// labeled turns pipeline errors into the user-facing labeled message.
func labeled(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(pipeline.Describe(err))
}
