package linkindex

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/types"
)

// Lexical scores catalog rows by how many skill terms occur in their tech stack text.
type Lexical struct {
	mu      sync.RWMutex
	records []types.LinkRecord
	logger  *zap.Logger
}

// NewLexical returns an empty lexical index.
func NewLexical(logger *zap.Logger) *Lexical {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lexical{logger: logger}
}

// Load stores a copy of records. Only the first non-empty load takes effect.
func (l *Lexical) Load(_ context.Context, records []types.LinkRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) > 0 {
		l.logger.Debug("lexical index already loaded", zap.Int("records", len(l.records)))
		return nil
	}
	l.records = append([]types.LinkRecord(nil), records...)
	return nil
}

// Query returns the links of the best scoring rows. Rows matching no skill are never returned.
func (l *Lexical) Query(_ context.Context, skills []string, limit int) []string {
	limit = normalizeLimit(limit)
	terms := normalizeSkills(skills)
	if len(terms) == 0 {
		return []string{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	type scored struct {
		url   string
		score int
	}
	candidates := make([]scored, 0, len(l.records))
	for _, rec := range l.records {
		if score := overlap(rec.TechStack, terms); score > 0 {
			candidates = append(candidates, scored{url: rec.URL, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	set := newLinkSet(limit)
	for _, c := range candidates {
		if set.add(c.url) {
			break
		}
	}
	return set.links
}

// Backend implements Index.
func (l *Lexical) Backend() Backend {
	return BackendLexical
}

// Close implements Index.
func (l *Lexical) Close() error {
	return nil
}

// Len returns the number of loaded records.
func (l *Lexical) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// overlap counts the terms (already lowercased) contained in techStack.
func overlap(techStack string, terms []string) int {
	text := strings.ToLower(techStack)
	score := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			score++
		}
	}
	return score
}
