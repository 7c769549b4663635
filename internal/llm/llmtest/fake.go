// Package llmtest provides in-memory llm.Client and llm.Embedder fakes for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/cold-email-agent/internal/llm"
)

// FakeClient returns canned responses and records every prompt it receives.
type FakeClient struct {
	mu sync.Mutex

	// Response is returned by GenerateContent and GenerateJSON.
	Response string
	// Err, when set, is returned instead of Response.
	Err error
	// Respond, when set, overrides Response and Err.
	Respond func(prompt string) (string, error)

	Prompts []string
	Tiers   []llm.ModelTier
	Closed  bool
}

// GenerateContent implements llm.Client.
func (f *FakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.record(prompt, tier)
}

// GenerateJSON implements llm.Client.
func (f *FakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.record(prompt, tier)
}

// GetModel implements llm.Client.
func (f *FakeClient) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

// Close implements llm.Client.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Calls returns the number of generation calls made so far.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}

// LastPrompt returns the most recent prompt, or "".
func (f *FakeClient) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}

func (f *FakeClient) record(prompt string, tier llm.ModelTier) (string, error) {
	f.mu.Lock()
	f.Prompts = append(f.Prompts, prompt)
	f.Tiers = append(f.Tiers, tier)
	respond := f.Respond
	f.mu.Unlock()

	if respond != nil {
		return respond(prompt)
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// KeywordEmbedder embeds text as a bag-of-keywords vector over a fixed vocabulary.
// Texts sharing vocabulary terms end up close in L2 distance, which is enough to
// exercise ranking without a live embedding model.
type KeywordEmbedder struct {
	Vocabulary []string
	Err        error

	mu    sync.Mutex
	calls int
}

// Embed implements llm.Embedder.
func (e *KeywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.Err != nil {
		return nil, e.Err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float32, len(e.Vocabulary))
		for j, term := range e.Vocabulary {
			if strings.Contains(lower, strings.ToLower(term)) {
				vec[j] = 1
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Calls returns the number of Embed invocations.
func (e *KeywordEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
