package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cold-email-agent/internal/db"
	"github.com/jonathan/cold-email-agent/internal/extraction"
	"github.com/jonathan/cold-email-agent/internal/linkindex"
	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/llm/llmtest"
	"github.com/jonathan/cold-email-agent/internal/types"
)

const careersText = `Careers at Acme

Data Analyst
Experience: 0-1 years
Skills: Python, SQL

Backend Engineer
Experience: 3+ years
Skills: Java, Spring`

const twoJobs = "```json\n" + `[
  {"role": "Data Analyst", "experience": "0-1 years", "skills": ["Python", "SQL"], "description": "Analyze data."},
  {"role": "Backend Engineer", "experience": "3+ years", "skills": ["Java", "Spring"], "description": "Build APIs."}
]` + "\n```"

func jane() types.UserProfile {
	return types.UserProfile{Name: "Jane Doe", Email: "jane@x.com"}
}

func catalogIndex(t *testing.T) linkindex.Index {
	t.Helper()
	index := linkindex.NewLexical(nil)
	require.NoError(t, index.Load(context.Background(), []types.LinkRecord{
		types.NewLinkRecord("Python, SQL", "https://a.example"),
		types.NewLinkRecord("Java, Spring", "https://b.example"),
	}))
	return index
}

// scriptedClient answers the extraction prompt with extractReply and every other
// prompt with an email that names the role it was asked about.
func scriptedClient(extractReply string, composeErr error) *llmtest.FakeClient {
	return &llmtest.FakeClient{Respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "SCRAPED TEXT FROM WEBSITE") {
			return extractReply, nil
		}
		if composeErr != nil && strings.Contains(prompt, "Role: Backend Engineer") {
			return "", composeErr
		}
		role := "Data Analyst"
		if strings.Contains(prompt, "Role: Backend Engineer") {
			role = "Backend Engineer"
		}
		return "Dear Hiring Team,\n\nI am applying for the " + role + " role.", nil
	}}
}

type fakeStore struct {
	mu        sync.Mutex
	createErr error
	runID     uuid.UUID
	created   []*db.RunInput
	completed []error
	jobCounts []int
	drafts    []*db.DraftInput
}

func (s *fakeStore) CreateRun(_ context.Context, input *db.RunInput) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	s.created = append(s.created, input)
	s.runID = uuid.New()
	return s.runID, nil
}

func (s *fakeStore) CompleteRun(_ context.Context, _ uuid.UUID, jobCount int, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, runErr)
	s.jobCounts = append(s.jobCounts, jobCount)
	return nil
}

func (s *fakeStore) SaveDraft(_ context.Context, _ uuid.UUID, input *db.DraftInput) (*db.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts = append(s.drafts, input)
	return &db.Draft{Position: input.Position}, nil
}

func TestRun_TextSource(t *testing.T) {
	client := scriptedClient(twoJobs, nil)

	result, err := Run(context.Background(), Options{
		Text:    careersText,
		Profile: jane(),
		Client:  client,
		Index:   catalogIndex(t),
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 2)

	assert.Equal(t, "Data Analyst", result.Jobs[0].Job.Role)
	assert.Equal(t, []string{"https://a.example"}, result.Jobs[0].Links)
	assert.Contains(t, result.Jobs[0].Draft.Body, "Data Analyst")
	assert.Contains(t, result.Jobs[0].Draft.Body, "Best regards,\nJane Doe")
	assert.True(t, result.Jobs[0].Draft.SignatureAppended)

	assert.Equal(t, "Backend Engineer", result.Jobs[1].Job.Role)
	assert.Equal(t, []string{"https://b.example"}, result.Jobs[1].Links)
	assert.Equal(t, 0, result.Degraded())
	assert.Equal(t, 3, client.Calls())

	extractPrompt := client.Prompts[0]
	assert.Contains(t, extractPrompt, "Careers at Acme Data Analyst Experience: 0-1 years")
	assert.Contains(t, client.Prompts[1]+client.Prompts[2], "- https://a.example")
}

func TestRun_FileSourceWritesDrafts(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "careers.txt")
	require.NoError(t, os.WriteFile(page, []byte(careersText), 0644))
	out := filepath.Join(dir, "out")

	result, err := Run(context.Background(), Options{
		File:      page,
		Profile:   jane(),
		Client:    scriptedClient(twoJobs, nil),
		OutputDir: out,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(out, "cold_email_data_analyst.txt"),
		filepath.Join(out, "cold_email_backend_engineer.txt"),
	}, result.Files())

	data, err := os.ReadFile(result.Jobs[1].File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Backend Engineer")
	assert.Empty(t, result.Jobs[0].Links, "no index means no links")
}

func TestRun_URLSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><main><h1>Data Analyst</h1><p>Python and SQL</p></main></body></html>"))
	}))
	defer server.Close()

	client := scriptedClient(`{"role": "Data Analyst", "skills": "Python"}`, nil)
	result, err := Run(context.Background(), Options{URL: server.URL, Profile: jane(), Client: client})
	require.NoError(t, err)

	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "Not specified", result.Jobs[0].Job.Experience)
	assert.Equal(t, server.URL, result.Metadata.URL)
	assert.Contains(t, client.Prompts[0], "Data Analyst Python and SQL")
}

func TestRun_ValidatesProfileBeforeAnyCall(t *testing.T) {
	client := scriptedClient(twoJobs, nil)

	_, err := Run(context.Background(), Options{
		Text:    careersText,
		Profile: types.UserProfile{Name: "Jane Doe"},
		Client:  client,
	})
	require.Error(t, err)
	assert.Equal(t, LabelValidation, Classify(err))
	assert.Equal(t, 0, client.Calls())
}

func TestRun_ExtractionFailureIsFatal(t *testing.T) {
	store := &fakeStore{}
	client := scriptedClient(`[{"role": "Data Analyst", "skills": [`, nil)

	result, err := Run(context.Background(), Options{
		Text:    careersText,
		Profile: jane(),
		Client:  client,
		Store:   store,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, extraction.ReasonUnparseable, extraction.ReasonOf(err))
	assert.Equal(t, LabelGeneration, Classify(err))
	assert.Equal(t, 1, client.Calls())

	require.Len(t, store.completed, 1)
	assert.Error(t, store.completed[0])
	assert.Empty(t, store.drafts)
}

func TestRun_NoPostingsIsBadInput(t *testing.T) {
	store := &fakeStore{}
	client := scriptedClient("```json\n[]\n```", nil)

	result, err := Run(context.Background(), Options{
		Text:      careersText,
		Profile:   jane(),
		Client:    client,
		Store:     store,
		OutputDir: t.TempDir(),
	})
	require.ErrorIs(t, err, ErrNoJobPostings)
	assert.Nil(t, result)
	assert.Equal(t, LabelBadInput, Classify(err))
	assert.Equal(t, 1, client.Calls(), "no composition call without postings")

	require.Len(t, store.completed, 1)
	assert.ErrorIs(t, store.completed[0], ErrNoJobPostings)
	assert.Empty(t, store.drafts)
}

func TestRun_CompositionFailureStaysInline(t *testing.T) {
	result, err := Run(context.Background(), Options{
		Text:    careersText,
		Profile: jane(),
		Client:  scriptedClient(twoJobs, errors.New("quota exceeded")),
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 2)

	assert.False(t, result.Jobs[0].Draft.Degraded)
	assert.True(t, result.Jobs[1].Draft.Degraded)
	assert.True(t, strings.HasPrefix(result.Jobs[1].Draft.Body, "Error generating email: "))
	assert.Contains(t, result.Jobs[1].Draft.Body, "quota exceeded")
	assert.Equal(t, 1, result.Degraded())
}

func TestRun_ParallelKeepsOrder(t *testing.T) {
	jobs := `[` +
		`{"role": "Data Analyst", "skills": ["Python"]},` +
		`{"role": "Backend Engineer", "skills": ["Java"]},` +
		`{"role": "Data Analyst", "skills": ["SQL"]},` +
		`{"role": "Backend Engineer", "skills": ["Spring"]}` +
		`]`

	result, err := Run(context.Background(), Options{
		Text:        careersText,
		Profile:     jane(),
		Client:      scriptedClient(jobs, nil),
		Index:       catalogIndex(t),
		Concurrency: 4,
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 4)

	for i, want := range []string{"Data Analyst", "Backend Engineer", "Data Analyst", "Backend Engineer"} {
		assert.Equal(t, want, result.Jobs[i].Job.Role)
		assert.Contains(t, result.Jobs[i].Draft.Body, want)
	}
	assert.Equal(t, []string{"Spring"}, []string(result.Jobs[3].Job.Skills))
}

func TestRun_PersistsRunAndDrafts(t *testing.T) {
	store := &fakeStore{}

	result, err := Run(context.Background(), Options{
		Text:    careersText,
		Profile: jane(),
		Client:  scriptedClient(twoJobs, nil),
		Index:   catalogIndex(t),
		Store:   store,
	})
	require.NoError(t, err)

	assert.Equal(t, store.runID, result.RunID)
	require.Len(t, store.created, 1)
	assert.Equal(t, db.SourceText, store.created[0].Source)
	assert.Equal(t, result.Metadata.Hash, store.created[0].ContentHash)

	require.Len(t, store.drafts, 2)
	assert.Equal(t, 0, store.drafts[0].Position)
	assert.Equal(t, "Data Analyst", store.drafts[0].Role)
	assert.Equal(t, []string{"Python", "SQL"}, store.drafts[0].Skills)
	assert.Equal(t, 1, store.drafts[1].Position)

	assert.Equal(t, []error{nil}, store.completed)
	assert.Equal(t, []int{2}, store.jobCounts)
}

func TestRun_PersistenceFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{createErr: errors.New("connection refused")}

	result, err := Run(context.Background(), Options{
		Text:    careersText,
		Profile: jane(),
		Client:  scriptedClient(twoJobs, nil),
		Store:   store,
	})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, result.RunID)
	assert.Len(t, result.Jobs, 2)
	assert.Empty(t, store.drafts)
	assert.Empty(t, store.completed)
}

func TestRun_CompositionTier(t *testing.T) {
	client := scriptedClient(`[{"role": "Data Analyst"}]`, nil)

	_, err := Run(context.Background(), Options{
		Text:            careersText,
		Profile:         jane(),
		Client:          client,
		CompositionTier: llm.TierAdvanced,
	})
	require.NoError(t, err)
	assert.Equal(t, []llm.ModelTier{llm.TierStandard, llm.TierAdvanced}, client.Tiers)
}

func TestRun_RequiresClient(t *testing.T) {
	_, err := Run(context.Background(), Options{Text: careersText, Profile: jane()})
	assert.ErrorContains(t, err, "llm client is required")
}

func TestIngest_SourceSelection(t *testing.T) {
	ctx := context.Background()

	_, _, err := Ingest(ctx, Options{})
	assert.ErrorIs(t, err, ErrNoSource)

	_, _, err = Ingest(ctx, Options{URL: "https://example.com", Text: "x"})
	assert.ErrorIs(t, err, ErrMultipleSources)

	text, metadata, err := Ingest(ctx, Options{Text: "  Data   Analyst "})
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", text)
	assert.Equal(t, "text", string(metadata.Source))
}
