// Package composition writes a tailored cold email for one job posting with a single LLM call.
package composition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cold-email-agent/internal/llm"
	"github.com/jonathan/cold-email-agent/internal/prompts"
	"github.com/jonathan/cold-email-agent/internal/types"
)

const promptFile = "composition.json"

// NoLinksText replaces the portfolio link list when retrieval found nothing.
const NoLinksText = "No relevant portfolio links found."

// ErrorPrefix starts the body of every degraded draft.
const ErrorPrefix = "Error generating email: "

// Options configures a Composer.
type Options struct {
	Tier   llm.ModelTier
	Logger *zap.Logger
}

// Composer turns a job posting and an applicant profile into an email draft.
type Composer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *zap.Logger
}

// New creates a Composer backed by client.
func New(client llm.Client, opts Options) *Composer {
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Composer{client: client, tier: opts.Tier, logger: opts.Logger}
}

// ComposeEmail returns the email body for job. Failures come back as an
// "Error generating email: ..." body instead of an error.
func (c *Composer) ComposeEmail(ctx context.Context, job types.JobPosting, links []string, profile types.UserProfile, instruction string) string {
	return c.Compose(ctx, job, links, profile, instruction).Body
}

// Compose builds the prompt, calls the model once and post-processes the reply.
// It never returns an error: a failed draft has Degraded set and carries the cause in Body.
func (c *Composer) Compose(ctx context.Context, job types.JobPosting, links []string, profile types.UserProfile, instruction string) types.EmailDraft {
	job = job.WithDefaults()
	profile = profile.Normalize()

	prompt, err := BuildPrompt(job, links, profile, instruction)
	if err != nil {
		return c.degraded(job, err)
	}

	raw, err := c.client.GenerateContent(ctx, prompt, c.tier)
	if err != nil {
		return c.degraded(job, err)
	}
	if strings.TrimSpace(raw) == "" {
		return c.degraded(job, errors.New("model returned an empty response"))
	}

	body, appended := finalizeBody(raw, closingSignature(profile, job))
	c.logger.Debug("composed email",
		zap.String("role", job.Role),
		zap.Int("links", len(links)),
		zap.Bool("signature_appended", appended),
		zap.Int("words", len(strings.Fields(body))))
	return types.EmailDraft{Body: body, SignatureAppended: appended}
}

func (c *Composer) degraded(job types.JobPosting, err error) types.EmailDraft {
	c.logger.Warn("email generation failed", zap.String("role", job.Role), zap.Error(err))
	return types.EmailDraft{Body: ErrorPrefix + err.Error(), Degraded: true}
}

// BuildPrompt renders the write-email prompt. The result has no unresolved
// placeholders; every absent profile field is replaced by its default.
func BuildPrompt(job types.JobPosting, links []string, profile types.UserProfile, instruction string) (string, error) {
	job = job.WithDefaults()

	jobBlock, err := JobDescription(job)
	if err != nil {
		return "", err
	}

	data := map[string]string{
		"JobDescription":  jobBlock,
		"JobTitle":        job.Role,
		"Name":            profile.Value(types.FieldName),
		"CurrentPosition": profile.Value(types.FieldJobTitle),
		"Company":         organization(profile),
		"Email":           profile.Value(types.FieldEmail),
		"Phone":           profile.Value(types.FieldPhone),
		"Location":        profile.Value(types.FieldLocation),
		"EmploymentType":  profile.Value(types.FieldEmploymentType),
		"WorkMode":        profile.Value(types.FieldWorkMode),
		"Skills":          profile.Value(types.FieldSkills),
		"Education":       profile.Value(types.FieldEducation),
		"Certifications":  profile.Value(types.FieldCertifications),
		"Projects":        profile.Value(types.FieldProjects),
		"AdditionalInfo":  profile.Value(types.FieldAdditionalInfo),
		"PortfolioLinks":  formatLinks(links),
		"Instruction":     formatInstruction(instruction),
		"Signature":       BuildSignature(profile).Render(),
	}

	prompt, err := prompts.Render(promptFile, "write-email", data)
	if err != nil {
		return "", fmt.Errorf("failed to build email prompt: %w", err)
	}
	return prompt, nil
}

// JobDescription renders the job block shown to the model.
func JobDescription(job types.JobPosting) (string, error) {
	job = job.WithDefaults()
	return prompts.Render(promptFile, "job-description", map[string]string{
		"Role":        job.Role,
		"Experience":  job.Experience,
		"Skills":      job.Skills.Join(),
		"Description": job.Description,
	})
}

// organization is the company, else the institution, else the default.
func organization(profile types.UserProfile) string {
	if !profile.Has(types.FieldCompany) && profile.Has(types.FieldInstitution) {
		return profile.Value(types.FieldInstitution)
	}
	return profile.Value(types.FieldCompany)
}

func formatLinks(links []string) string {
	var sb strings.Builder
	for _, link := range links {
		if link = strings.TrimSpace(link); link == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + link)
	}
	if sb.Len() == 0 {
		return NoLinksText
	}
	return sb.String()
}

func formatInstruction(instruction string) string {
	if strings.TrimSpace(instruction) == "" {
		return "None"
	}
	return strings.TrimSpace(instruction)
}
