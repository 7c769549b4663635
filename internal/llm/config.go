// Package llm provides centralized LLM configuration and client abstractions.
// Extraction and composition both talk to the model through the Client interface defined here.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, short extraction
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: job posting extraction, structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form generation: email composition
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the only supported provider.
const ProviderGemini Provider = "gemini"

// DefaultEmbeddingModel is the embedding model used by the semantic link index.
const DefaultEmbeddingModel = "text-embedding-004"

// DefaultEmbeddingDimensions matches DefaultEmbeddingModel.
const DefaultEmbeddingDimensions = 768

// Config holds the model configuration for the application
type Config struct {
	Provider       Provider
	Models         map[ModelTier]string
	EmbeddingModel string
	// Temperature is applied to every generation call. Zero keeps output deterministic.
	Temperature float32
	// RequestsPerMinute throttles outbound calls when positive.
	RequestsPerMinute int
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		EmbeddingModel: DefaultEmbeddingModel,
		Temperature:    0,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithEmbeddingModel returns a new Config using the given embedding model
func (c *Config) WithEmbeddingModel(model string) *Config {
	newConfig := c.clone()
	newConfig.EmbeddingModel = model
	return newConfig
}

func (c *Config) clone() *Config {
	newConfig := &Config{
		Provider:          c.Provider,
		Models:            make(map[ModelTier]string, len(c.Models)),
		EmbeddingModel:    c.EmbeddingModel,
		Temperature:       c.Temperature,
		RequestsPerMinute: c.RequestsPerMinute,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	return newConfig
}
