// Package linkindex matches a job's skills to portfolio links from a static catalog.
//
// Two strategies share the Index interface: a semantic one backed by embeddings
// in a persistent vector store, and a lexical one scoring substring overlap.
// Open picks one strategy at startup; the lexical strategy is always available.
package linkindex

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/types"
	"github.com/jonathan/cold-email-agent/internal/vectorstore"
)

// DefaultLimit is the number of links returned when the caller does not ask for a count.
const DefaultLimit = 2

// DefaultCollection names the vector collection holding the catalog.
const DefaultCollection = "portfolio"

// Backend identifies the strategy answering queries.
type Backend string

// Available backends.
const (
	BackendSemantic Backend = "semantic"
	BackendLexical  Backend = "lexical"
)

// Index answers "best links for these skills" queries.
//
// Query never returns more than limit links, never duplicates and never empty
// strings. A limit of zero or less means DefaultLimit.
type Index interface {
	// Load ingests the catalog. Loading an already populated index is a no-op.
	Load(ctx context.Context, records []types.LinkRecord) error
	Query(ctx context.Context, skills []string, limit int) []string
	Backend() Backend
	Close() error
}

// Options configures Open.
type Options struct {
	// Embedder enables the semantic backend together with StorePath.
	Embedder llm.Embedder
	// StorePath is the vector store file. Empty disables the semantic backend.
	StorePath  string
	Collection string
	Dimensions int
	Logger     *zap.Logger
}

// Open builds an index over records, preferring the semantic backend.
// Any failure to set up the semantic backend is logged and the lexical
// backend is returned instead; Open itself only fails if the lexical load fails.
func Open(ctx context.Context, opts Options, records []types.LinkRecord) (Index, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	lexical := NewLexical(opts.Logger)
	if err := lexical.Load(ctx, records); err != nil {
		return nil, err
	}

	if opts.Embedder == nil || opts.StorePath == "" {
		opts.Logger.Info("semantic link index disabled, using lexical matching",
			zap.Bool("embedder", opts.Embedder != nil),
			zap.Bool("store_path", opts.StorePath != ""))
		return lexical, nil
	}

	store, err := vectorstore.Open(ctx, opts.StorePath, vectorstore.Options{
		Dimensions: opts.Dimensions,
		Logger:     opts.Logger,
	})
	if err != nil {
		opts.Logger.Warn("vector store unavailable, falling back to lexical matching", zap.Error(err))
		return lexical, nil
	}

	semantic := NewSemantic(store, store.Collection(opts.Collection), opts.Embedder, lexical, opts.Logger)
	if err := semantic.Load(ctx, records); err != nil {
		opts.Logger.Warn("failed to seed vector store, falling back to lexical matching", zap.Error(err))
		_ = store.Close()
		return lexical, nil
	}
	return semantic, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// normalizeSkills lowercases and trims skills, dropping blanks and repeats while keeping order.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		term := strings.ToLower(strings.TrimSpace(s))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

// linkSet accumulates distinct non-empty links up to a limit.
type linkSet struct {
	limit int
	seen  map[string]bool
	links []string
}

func newLinkSet(limit int) *linkSet {
	return &linkSet{limit: limit, seen: make(map[string]bool), links: []string{}}
}

// add appends link and reports whether the set is full.
func (s *linkSet) add(link string) bool {
	link = strings.TrimSpace(link)
	if link != "" && !s.seen[link] && len(s.links) < s.limit {
		s.seen[link] = true
		s.links = append(s.links, link)
	}
	return len(s.links) >= s.limit
}
