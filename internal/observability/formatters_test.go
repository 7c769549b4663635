package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/cold-email-agent/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintJobPostings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobPostings([]types.JobPosting{
		{Role: "Data Analyst", Experience: "0-1 years", Skills: types.SkillList{"Python", "SQL"}},
		{Role: "Backend Engineer", Experience: "3+ years", Skills: types.SkillList{"Go", "SQL", "Docker", "Kafka", "Redis", "AWS", "Terraform"}},
	})
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED JOB POSTINGS")
	assert.Contains(t, output, "Postings found: 2")
	assert.Contains(t, output, "#1  Data Analyst")
	assert.Contains(t, output, "Python, SQL")
	assert.Contains(t, output, "(+2 more)")
}

func TestPrintJobPostings_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobPostings(nil)
	assert.Empty(t, buf.String())
}

func TestPrintLinks(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLinks("Data Analyst", []string{"https://a.example.com", "https://b.example.com"})
	output := buf.String()
	assert.Contains(t, output, "PORTFOLIO LINKS")
	assert.Contains(t, output, "• https://a.example.com")

	buf.Reset()
	p.PrintLinks("Designer", nil)
	assert.Contains(t, buf.String(), "No matching portfolio links")
}

func TestPrintEmail(t *testing.T) {
	body := "Dear Hiring Manager,\n" + strings.Repeat("line\n", 20) + "Best regards,\nJane Doe"

	tests := []struct {
		name   string
		draft  types.EmailDraft
		status string
	}{
		{"plain", types.EmailDraft{Body: body}, "Status: ok"},
		{"appended", types.EmailDraft{Body: body, SignatureAppended: true}, "signature appended"},
		{"degraded", types.EmailDraft{Body: "Error generating email: boom", Degraded: true}, "generation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintEmail("Data Analyst", tt.draft)
			output := buf.String()
			assert.Contains(t, output, "COMPOSED EMAIL")
			assert.Contains(t, output, tt.status)
		})
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintEmail("Data Analyst", types.EmailDraft{Body: body})
	assert.Contains(t, buf.String(), "more lines")
	assert.NotContains(t, buf.String(), "Jane Doe")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunSummary(3, 1, []string{"cold_email_data_analyst.txt"})
	output := buf.String()

	assert.Contains(t, output, "Emails generated: 2")
	assert.Contains(t, output, "Failed:           1")
	assert.Contains(t, output, "cold_email_data_analyst.txt")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
