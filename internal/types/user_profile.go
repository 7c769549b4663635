package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProfileField names a recognized user profile field.
type ProfileField string

// Recognized profile fields.
const (
	FieldName           ProfileField = "name"
	FieldEmail          ProfileField = "email"
	FieldPhone          ProfileField = "phone"
	FieldLocation       ProfileField = "location"
	FieldJobTitle       ProfileField = "job_title"
	FieldCompany        ProfileField = "company"
	FieldInstitution    ProfileField = "institution"
	FieldEmploymentType ProfileField = "employment_type"
	FieldWorkMode       ProfileField = "work_mode"
	FieldSkills         ProfileField = "skills"
	FieldProjects       ProfileField = "projects"
	FieldEducation      ProfileField = "education"
	FieldCertifications ProfileField = "certifications"
	FieldAdditionalInfo ProfileField = "additional_info"
	FieldLinkedIn       ProfileField = "linkedin"
	FieldPortfolioURL   ProfileField = "portfolio_url"
)

// ProfileDefaults holds the value used in prompts when a field is absent.
var ProfileDefaults = map[ProfileField]string{
	FieldName:           NotSpecified,
	FieldEmail:          NotSpecified,
	FieldPhone:          NotSpecified,
	FieldLocation:       NotSpecified,
	FieldJobTitle:       NotSpecified,
	FieldCompany:        NotSpecified,
	FieldInstitution:    NotSpecified,
	FieldEmploymentType: NotSpecified,
	FieldWorkMode:       NotSpecified,
	FieldSkills:         NotSpecified,
	FieldProjects:       "No projects specified",
	FieldEducation:      NotSpecified,
	FieldCertifications: "None",
	FieldAdditionalInfo: "None",
	FieldLinkedIn:       NotSpecified,
	FieldPortfolioURL:   NotSpecified,
}

// UserProfile is the applicant information supplied with a generation request.
type UserProfile struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	Company        string `json:"company,omitempty"`
	Institution    string `json:"institution,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	WorkMode       string `json:"work_mode,omitempty"`
	Skills         string `json:"skills,omitempty"`
	Projects       string `json:"projects,omitempty"`
	Education      string `json:"education,omitempty"`
	Certifications string `json:"certifications,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	LinkedIn       string `json:"linkedin,omitempty"`
	PortfolioURL   string `json:"portfolio_url,omitempty"`
}

// ProfileValidationError lists the profile fields that failed validation.
type ProfileValidationError struct {
	Fields []string
	Cause  error
}

func (e *ProfileValidationError) Error() string {
	return fmt.Sprintf("validation error: missing or invalid profile fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ProfileValidationError) Unwrap() error {
	return e.Cause
}

// Validate checks the required fields (name, email).
func (p *UserProfile) Validate() error {
	validate := validator.New()
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, jsonFieldName(fe.Field()))
	}
	return &ProfileValidationError{Fields: fields, Cause: err}
}

// Value returns the trimmed value of field, or its default when absent.
func (p UserProfile) Value(field ProfileField) string {
	if v := strings.TrimSpace(p.raw(field)); v != "" {
		return v
	}
	return ProfileDefaults[field]
}

// Has reports whether field carries a real value (not blank, not the NotSpecified sentinel).
func (p UserProfile) Has(field ProfileField) bool {
	return IsPresent(p.raw(field))
}

// IsPresent reports whether value is non-blank and not the NotSpecified sentinel.
func IsPresent(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, NotSpecified)
}

// Normalize resolves student shorthand: a "Student" job title becomes
// "Student at <institution>" and a "Student" company falls back to the institution.
func (p UserProfile) Normalize() UserProfile {
	out := p
	institution := strings.TrimSpace(p.Institution)
	if strings.EqualFold(strings.TrimSpace(p.JobTitle), "student") && institution != "" {
		out.JobTitle = "Student at " + institution
	}
	if strings.EqualFold(strings.TrimSpace(p.Company), "student") {
		if institution != "" {
			out.Company = institution
		} else {
			out.Company = "Student"
		}
	}
	return out
}

// LoadUserProfile reads a profile from a JSON file. Unknown fields are rejected.
func LoadUserProfile(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var profile UserProfile
	if err := dec.Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &profile, nil
}

func (p UserProfile) raw(field ProfileField) string {
	switch field {
	case FieldName:
		return p.Name
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	case FieldLocation:
		return p.Location
	case FieldJobTitle:
		return p.JobTitle
	case FieldCompany:
		return p.Company
	case FieldInstitution:
		return p.Institution
	case FieldEmploymentType:
		return p.EmploymentType
	case FieldWorkMode:
		return p.WorkMode
	case FieldSkills:
		return p.Skills
	case FieldProjects:
		return p.Projects
	case FieldEducation:
		return p.Education
	case FieldCertifications:
		return p.Certifications
	case FieldAdditionalInfo:
		return p.AdditionalInfo
	case FieldLinkedIn:
		return p.LinkedIn
	case FieldPortfolioURL:
		return p.PortfolioURL
	default:
		return ""
	}
}

func jsonFieldName(structField string) string {
	switch structField {
	case "Name":
		return string(FieldName)
	case "Email":
		return string(FieldEmail)
	default:
		return strings.ToLower(structField)
	}
}
