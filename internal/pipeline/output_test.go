package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cold-email-agent/internal/types"
)

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{"Data Analyst", "cold_email_data_analyst.txt"},
		{"  Senior Backend Engineer ", "cold_email_senior_backend_engineer.txt"},
		{"ML/AI Engineer", "cold_email_mlai_engineer.txt"},
		{"../../etc/passwd", "cold_email_etcpasswd.txt"},
		{"Ingénieur Logiciel", "cold_email_ingénieur_logiciel.txt"},
		{"", "cold_email_position.txt"},
		{"???", "cold_email_position.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputFileName(tt.role))
		})
	}
}

func TestWriteDrafts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "emails")
	jobs := []JobResult{
		{Job: types.JobPosting{Role: "Data Analyst"}, Draft: types.EmailDraft{Body: "first"}},
		{Job: types.JobPosting{Role: "Data Analyst"}, Draft: types.EmailDraft{Body: "second"}},
		{Job: types.JobPosting{Role: ""}, Draft: types.EmailDraft{Body: "third"}},
	}

	require.NoError(t, WriteDrafts(dir, jobs))

	assert.Equal(t, filepath.Join(dir, "cold_email_data_analyst.txt"), jobs[0].File)
	assert.Equal(t, filepath.Join(dir, "cold_email_data_analyst_2.txt"), jobs[1].File)
	assert.Equal(t, filepath.Join(dir, "cold_email_position.txt"), jobs[2].File)

	data, err := os.ReadFile(jobs[1].File)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}

func TestWriteDrafts_SuffixNeverCollides(t *testing.T) {
	dir := t.TempDir()
	jobs := []JobResult{
		{Job: types.JobPosting{Role: "Engineer"}, Draft: types.EmailDraft{Body: "one"}},
		{Job: types.JobPosting{Role: "Engineer"}, Draft: types.EmailDraft{Body: "two"}},
		{Job: types.JobPosting{Role: "Engineer 2"}, Draft: types.EmailDraft{Body: "three"}},
	}

	require.NoError(t, WriteDrafts(dir, jobs))

	assert.Equal(t, filepath.Join(dir, "cold_email_engineer.txt"), jobs[0].File)
	assert.Equal(t, filepath.Join(dir, "cold_email_engineer_2.txt"), jobs[1].File)
	assert.Equal(t, filepath.Join(dir, "cold_email_engineer_2_2.txt"), jobs[2].File)

	for i, body := range []string{"one", "two", "three"} {
		data, err := os.ReadFile(jobs[i].File)
		require.NoError(t, err)
		assert.Equal(t, body+"\n", string(data))
	}
}
