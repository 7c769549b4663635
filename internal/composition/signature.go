package composition

import (
	"strings"

	"github.com/jonathan/cold-email-agent/internal/types"
)

// DefaultClosing opens every signature this package produces.
const DefaultClosing = "Best regards,"

// SignatureBlock is the applicant's sign-off, split into the identity lines
// (closing, name, title, organization) and the contact lines that follow a blank line.
type SignatureBlock struct {
	Identity []string
	Contact  []string
}

// contactFields lists the contact lines in the order they are rendered.
var contactFields = []struct {
	field types.ProfileField
	label string
}{
	{types.FieldEmail, "Email"},
	{types.FieldPhone, "Phone"},
	{types.FieldLocation, "Location"},
	{types.FieldLinkedIn, "LinkedIn"},
	{types.FieldPortfolioURL, "Portfolio"},
}

// BuildSignature selects the signature lines for profile. Only fields that are
// present (and not the "Not specified" sentinel) contribute a line; the
// organization line prefers the company and falls back to the institution.
func BuildSignature(profile types.UserProfile) SignatureBlock {
	block := SignatureBlock{
		Identity: []string{DefaultClosing, profile.Value(types.FieldName)},
	}

	if profile.Has(types.FieldJobTitle) {
		block.Identity = append(block.Identity, profile.Value(types.FieldJobTitle))
	}
	switch {
	case profile.Has(types.FieldCompany):
		block.Identity = append(block.Identity, profile.Value(types.FieldCompany))
	case profile.Has(types.FieldInstitution):
		block.Identity = append(block.Identity, profile.Value(types.FieldInstitution))
	}

	for _, cf := range contactFields {
		if profile.Has(cf.field) {
			block.Contact = append(block.Contact, cf.label+": "+profile.Value(cf.field))
		}
	}
	return block
}

// Lines returns the rendered lines, with an empty line separating identity and contact.
func (s SignatureBlock) Lines() []string {
	lines := make([]string, 0, len(s.Identity)+len(s.Contact)+1)
	lines = append(lines, s.Identity...)
	lines = append(lines, "")
	lines = append(lines, s.Contact...)
	return lines
}

// Render joins the signature lines into prompt text.
func (s SignatureBlock) Render() string {
	return strings.TrimRight(strings.Join(s.Lines(), "\n"), "\n")
}

// closingSignature is the short sign-off appended after model output that has none:
// closing, name, position with optional company, phone when known, then email.
func closingSignature(profile types.UserProfile, job types.JobPosting) string {
	position := "Professional"
	switch {
	case profile.Has(types.FieldJobTitle):
		position = profile.Value(types.FieldJobTitle)
	case types.IsPresent(job.Role):
		position = strings.TrimSpace(job.Role)
	}
	if company := profile.Value(types.FieldCompany); profile.Has(types.FieldCompany) &&
		!strings.Contains(strings.ToLower(position), strings.ToLower(company)) {
		position += " at " + company
	}

	lines := []string{DefaultClosing, profile.Value(types.FieldName), position}
	if profile.Has(types.FieldPhone) {
		lines = append(lines, "Phone: "+profile.Value(types.FieldPhone))
	}
	lines = append(lines, "Email: "+profile.Value(types.FieldEmail))
	return strings.Join(lines, "\n")
}
