package composition

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/llm/llmtest"
	"github.com/jonathan/cold-email-agent/internal/types"
)

func dataAnalystJob() types.JobPosting {
	return types.JobPosting{
		Role:        "Data Analyst",
		Experience:  "0-1 years",
		Skills:      types.SkillList{"Python"},
		Description: "Analyze product usage data and report insights to the growth team.",
	}
}

func janeDoe() types.UserProfile {
	return types.UserProfile{Name: "Jane Doe", Email: "jane@x.com"}
}

// modelEmail returns a plausible model reply of roughly 230 words without a sign-off.
func modelEmail() string {
	paragraph := "I have spent the last year analyzing datasets with Python and presenting findings to stakeholders in clear written reports. "
	var sb strings.Builder
	sb.WriteString("Subject: Application for Data Analyst Position - Jane Doe\n\nDear Hiring Team,\n\n")
	sb.WriteString("My name is Jane Doe and I am excited to apply for the Data Analyst position.\n\n")
	for i := 0; i < 10; i++ {
		sb.WriteString(paragraph)
	}
	sb.WriteString("\n\nThank you for your time and consideration.")
	return sb.String()
}

func TestComposeEmail_EndToEndScenario(t *testing.T) {
	client := &llmtest.FakeClient{Response: modelEmail()}
	composer := New(client, Options{})

	body := composer.ComposeEmail(context.Background(), dataAnalystJob(), nil, janeDoe(), "")

	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "Data Analyst")
	words := len(strings.Fields(body))
	assert.GreaterOrEqual(t, words, 150)
	assert.LessOrEqual(t, words, 400)
	assert.Equal(t, 1, strings.Count(body, "Best regards"))
	assert.NotContains(t, strings.ToLower(body), "sincerely")
	assert.Equal(t, 1, client.Calls())
}

func TestCompose_SignatureHandling(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		profile      types.UserProfile
		wantAppended bool
		wantBody     string
	}{
		{
			name:         "no closing gets synthesized signature",
			response:     "Dear Hiring Team,\n\nI would love to join.",
			profile:      janeDoe(),
			wantAppended: true,
			wantBody:     "Dear Hiring Team,\n\nI would love to join.\n\nBest regards,\nJane Doe\nData Analyst\nEmail: jane@x.com",
		},
		{
			name:         "model sincerely closing kept verbatim",
			response:     "Dear Hiring Team,\n\nI would love to join.\n\nSincerely,\nJane Doe",
			profile:      janeDoe(),
			wantAppended: false,
			wantBody:     "Dear Hiring Team,\n\nI would love to join.\n\nSincerely,\nJane Doe",
		},
		{
			name:         "model best regards closing kept verbatim",
			response:     "  Dear Hiring Team,\n\nThanks.\n\nBest Regards,\nJane Doe\nEmail: jane@x.com  \n",
			profile:      janeDoe(),
			wantAppended: false,
			wantBody:     "Dear Hiring Team,\n\nThanks.\n\nBest Regards,\nJane Doe\nEmail: jane@x.com",
		},
		{
			name:         "dangling closing replaced",
			response:     "Dear Hiring Team,\n\nThanks.\n\nSincerely,",
			profile:      janeDoe(),
			wantAppended: true,
			wantBody:     "Dear Hiring Team,\n\nThanks.\n\nBest regards,\nJane Doe\nData Analyst\nEmail: jane@x.com",
		},
		{
			name:     "full profile signature",
			response: "Dear Hiring Team,\n\nThanks.",
			profile: types.UserProfile{
				Name:     "Sam Lee",
				Email:    "sam@example.com",
				Phone:    "555-0100",
				JobTitle: "Software Engineer",
				Company:  "Initech",
			},
			wantAppended: true,
			wantBody:     "Dear Hiring Team,\n\nThanks.\n\nBest regards,\nSam Lee\nSoftware Engineer at Initech\nPhone: 555-0100\nEmail: sam@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &llmtest.FakeClient{Response: tt.response}
			draft := New(client, Options{}).Compose(context.Background(), dataAnalystJob(), nil, tt.profile, "")

			assert.False(t, draft.Degraded)
			assert.Equal(t, tt.wantAppended, draft.SignatureAppended)
			assert.Equal(t, tt.wantBody, draft.Body)
		})
	}
}

func TestCompose_NeverTwoSignatures(t *testing.T) {
	responses := []string{
		"Hello.\n\nSincerely,\nJane Doe",
		"Hello.\n\nsincerely,\nJane",
		"Hello.\n\nBest regards,",
		"Hello.\n\nBEST REGARDS,\nJane Doe",
		"Hello.",
	}
	for _, response := range responses {
		client := &llmtest.FakeClient{Response: response}
		body := New(client, Options{}).ComposeEmail(context.Background(), dataAnalystJob(), nil, janeDoe(), "")

		lower := strings.ToLower(body)
		closings := strings.Count(lower, "best regards") + strings.Count(lower, "sincerely")
		assert.Equal(t, 1, closings, "response %q produced %q", response, body)
	}
}

func TestCompose_Degrades(t *testing.T) {
	tests := []struct {
		name      string
		client    *llmtest.FakeClient
		wantError string
	}{
		{
			name:      "llm failure",
			client:    &llmtest.FakeClient{Err: errors.New("rate limit exceeded")},
			wantError: "Error generating email: rate limit exceeded",
		},
		{
			name:      "empty response",
			client:    &llmtest.FakeClient{Response: "  \n "},
			wantError: "Error generating email: model returned an empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := New(tt.client, Options{}).Compose(context.Background(), dataAnalystJob(), nil, janeDoe(), "")

			assert.True(t, draft.Degraded)
			assert.False(t, draft.SignatureAppended)
			assert.Equal(t, tt.wantError, draft.Body)
		})
	}
}

func TestCompose_UsesConfiguredTier(t *testing.T) {
	client := &llmtest.FakeClient{Response: "Hello."}
	New(client, Options{Tier: llm.TierAdvanced}).Compose(context.Background(), dataAnalystJob(), nil, janeDoe(), "")

	assert.Equal(t, []llm.ModelTier{llm.TierAdvanced}, client.Tiers)
}

func TestBuildPrompt_FullyResolved(t *testing.T) {
	prompt, err := BuildPrompt(types.JobPosting{}, nil, janeDoe(), "")
	require.NoError(t, err)

	assert.NotContains(t, prompt, "{{.")
	assert.Contains(t, prompt, "- Name: Jane Doe")
	assert.Contains(t, prompt, "- Current Position: Not specified")
	assert.Contains(t, prompt, "- Projects: No projects specified")
	assert.Contains(t, prompt, "- Certifications: None")
	assert.Contains(t, prompt, "- Additional Information: None")
	assert.Contains(t, prompt, "Job Description:\nNo description available")
	assert.Contains(t, prompt, "Required Skills: Not specified")
	assert.Contains(t, prompt, NoLinksText)
	assert.Contains(t, prompt, "### APPLICANT INSTRUCTIONS:\nNone")
	assert.Contains(t, prompt, "200-300 words")
}

func TestBuildPrompt_JobLinksAndInstruction(t *testing.T) {
	links := []string{"https://a.example", " ", "https://b.example"}
	prompt, err := BuildPrompt(dataAnalystJob(), links, janeDoe(), "Mention my Kaggle work")
	require.NoError(t, err)

	assert.Contains(t, prompt, "Subject: Application for Data Analyst Position - Jane Doe")
	assert.Contains(t, prompt, "Role: Data Analyst")
	assert.Contains(t, prompt, "Experience: 0-1 years")
	assert.Contains(t, prompt, "Required Skills: Python")
	assert.Contains(t, prompt, "- https://a.example\n- https://b.example")
	assert.NotContains(t, prompt, NoLinksText)
	assert.Contains(t, prompt, "Mention my Kaggle work")
	assert.Contains(t, prompt, "Best regards,\nJane Doe\n\nEmail: jane@x.com")
}

func TestBuildPrompt_ValuesAreNotReinterpreted(t *testing.T) {
	profile := janeDoe()
	profile.AdditionalInfo = "I write templates like {{.Name}} for fun"

	prompt, err := BuildPrompt(dataAnalystJob(), nil, profile, "")
	require.NoError(t, err)
	assert.Contains(t, prompt, "I write templates like {{.Name}} for fun")
}

func TestCompose_StudentProfile(t *testing.T) {
	client := &llmtest.FakeClient{Response: "Hello."}
	profile := types.UserProfile{
		Name:        "Ana Ruiz",
		Email:       "ana@uni.edu",
		JobTitle:    "Student",
		Company:     "Student",
		Institution: "State University",
	}

	draft := New(client, Options{}).Compose(context.Background(), dataAnalystJob(), nil, profile, "")

	assert.Contains(t, client.LastPrompt(), "- Current Position: Student at State University")
	assert.Contains(t, client.LastPrompt(), "- Company: State University")
	assert.Contains(t, draft.Body, "Ana Ruiz\nStudent at State University\nEmail: ana@uni.edu")
}
