package linkindex

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/types"
	"github.com/jonathan/cold-email-agent/internal/vectorstore"
)

// linksKey is the metadata key holding a document's portfolio link.
const linksKey = "links"

// embedBatchSize caps texts per embedding request.
const embedBatchSize = 100

// vectorCollection is the subset of *vectorstore.Collection the semantic index uses.
type vectorCollection interface {
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, docs []vectorstore.Document) error
	Query(ctx context.Context, queries [][]float32, topK int) ([][]vectorstore.Match, error)
}

// Semantic ranks catalog rows by embedding distance to each skill.
// Queries that fail at runtime are answered by the lexical fallback.
type Semantic struct {
	closer     interface{ Close() error }
	collection vectorCollection
	embedder   llm.Embedder
	fallback   *Lexical
	logger     *zap.Logger

	mu     sync.Mutex
	loaded bool
}

// NewSemantic creates a semantic index over collection. closer may be nil.
func NewSemantic(closer interface{ Close() error }, collection vectorCollection, embedder llm.Embedder, fallback *Lexical, logger *zap.Logger) *Semantic {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallback == nil {
		fallback = NewLexical(logger)
	}
	return &Semantic{
		closer:     closer,
		collection: collection,
		embedder:   embedder,
		fallback:   fallback,
		logger:     logger,
	}
}

// Load seeds the collection with one document per record, unless the
// persistent collection already holds documents from an earlier run.
func (s *Semantic) Load(ctx context.Context, records []types.LinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fallback.Load(ctx, records); err != nil {
		return err
	}
	if s.loaded {
		return nil
	}

	count, err := s.collection.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count catalog documents: %w", err)
	}
	if count > 0 {
		s.logger.Debug("vector collection already seeded", zap.Int("documents", count))
		s.loaded = true
		return nil
	}

	docs := make([]vectorstore.Document, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.TechStack) == "" || rec.URL == "" {
			continue
		}
		docs = append(docs, vectorstore.Document{
			Text:     rec.TechStack,
			Metadata: map[string]string{linksKey: rec.URL},
		})
	}

	for start := 0; start < len(docs); start += embedBatchSize {
		end := min(start+embedBatchSize, len(docs))
		texts := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			texts = append(texts, d.Text)
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed catalog: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
		}
		for i := range vectors {
			docs[start+i].Embedding = vectors[i]
		}
	}

	if err := s.collection.Add(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	s.logger.Info("seeded vector collection", zap.Int("documents", len(docs)))
	s.loaded = true
	return nil
}

// Query embeds each skill, takes the top limit matches per skill and merges
// them by ascending distance.
func (s *Semantic) Query(ctx context.Context, skills []string, limit int) []string {
	limit = normalizeLimit(limit)
	terms := normalizeSkills(skills)
	if len(terms) == 0 {
		return []string{}
	}

	links, err := s.query(ctx, terms, limit)
	if err != nil {
		s.logger.Warn("semantic link query failed, using lexical matching", zap.Error(err))
		return s.fallback.Query(ctx, skills, limit)
	}
	return links
}

func (s *Semantic) query(ctx context.Context, terms []string, limit int) ([]string, error) {
	vectors, err := s.embedder.Embed(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("failed to embed skills: %w", err)
	}
	groups, err := s.collection.Query(ctx, vectors, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector collection: %w", err)
	}

	var matches []vectorstore.Match
	for _, group := range groups {
		matches = append(matches, group...)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	set := newLinkSet(limit)
	for _, m := range matches {
		if set.add(m.Metadata[linksKey]) {
			break
		}
	}
	return set.links, nil
}

// Backend implements Index.
func (s *Semantic) Backend() Backend {
	return BackendSemantic
}

// Close releases the vector store.
func (s *Semantic) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
