package types

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_Validate(t *testing.T) {
	tests := []struct {
		name       string
		profile    UserProfile
		wantFields []string
	}{
		{
			name:    "valid minimal profile",
			profile: UserProfile{Name: "Jane Doe", Email: "jane@x.com"},
		},
		{
			name:       "missing name",
			profile:    UserProfile{Email: "jane@x.com"},
			wantFields: []string{"name"},
		},
		{
			name:       "missing both",
			profile:    UserProfile{Phone: "555-0100"},
			wantFields: []string{"name", "email"},
		},
		{
			name:       "invalid email",
			profile:    UserProfile{Name: "Jane Doe", Email: "not-an-email"},
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ProfileValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantFields, verr.Fields)
			assert.Contains(t, err.Error(), "validation error")
		})
	}
}

func TestUserProfile_Value(t *testing.T) {
	profile := UserProfile{Name: "Jane Doe", Email: "jane@x.com", Projects: "  ", Phone: " 555-0100 "}

	assert.Equal(t, "Jane Doe", profile.Value(FieldName))
	assert.Equal(t, "555-0100", profile.Value(FieldPhone))
	assert.Equal(t, "No projects specified", profile.Value(FieldProjects))
	assert.Equal(t, "None", profile.Value(FieldCertifications))
	assert.Equal(t, "None", profile.Value(FieldAdditionalInfo))
	assert.Equal(t, NotSpecified, profile.Value(FieldLocation))
}

func TestProfileDefaults_CoverEveryField(t *testing.T) {
	fields := []ProfileField{
		FieldName, FieldEmail, FieldPhone, FieldLocation, FieldJobTitle, FieldCompany,
		FieldInstitution, FieldEmploymentType, FieldWorkMode, FieldSkills, FieldProjects,
		FieldEducation, FieldCertifications, FieldAdditionalInfo, FieldLinkedIn, FieldPortfolioURL,
	}
	assert.Len(t, ProfileDefaults, len(fields))
	for _, f := range fields {
		assert.NotEmpty(t, ProfileDefaults[f], "default for %s", f)
	}
}

func TestUserProfile_Has(t *testing.T) {
	profile := UserProfile{Location: "Not specified", Phone: "555-0100", LinkedIn: " "}

	assert.True(t, profile.Has(FieldPhone))
	assert.False(t, profile.Has(FieldLocation))
	assert.False(t, profile.Has(FieldLinkedIn))
	assert.False(t, profile.Has(FieldCompany))
}

func TestUserProfile_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		profile      UserProfile
		wantJobTitle string
		wantCompany  string
	}{
		{
			name:         "student with institution",
			profile:      UserProfile{JobTitle: "Student", Company: "Student", Institution: "University of Mumbai"},
			wantJobTitle: "Student at University of Mumbai",
			wantCompany:  "University of Mumbai",
		},
		{
			name:         "student without institution",
			profile:      UserProfile{JobTitle: "student", Company: "student"},
			wantJobTitle: "student",
			wantCompany:  "Student",
		},
		{
			name:         "professional unchanged",
			profile:      UserProfile{JobTitle: "Software Engineer", Company: "Acme", Institution: "MIT"},
			wantJobTitle: "Software Engineer",
			wantCompany:  "Acme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.profile.Normalize()
			assert.Equal(t, tt.wantJobTitle, out.JobTitle)
			assert.Equal(t, tt.wantCompany, out.Company)
		})
	}
}

func TestLoadUserProfile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"name": "Jane Doe", "email": "jane@x.com", "linkedin": "https://linkedin.com/in/jane"}`), 0644))

	profile, err := LoadUserProfile(valid)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "https://linkedin.com/in/jane", profile.LinkedIn)

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"name": "Jane Doe", "favourite_color": "blue"}`), 0644))

	_, err = LoadUserProfile(unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "favourite_color")

	_, err = LoadUserProfile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestNewLinkRecord(t *testing.T) {
	record := NewLinkRecord(" Python, SQL ,, Machine Learning ", " https://a.example ")

	assert.Equal(t, "Python, SQL ,, Machine Learning", record.TechStack)
	assert.Equal(t, "https://a.example", record.URL)
	assert.Equal(t, []string{"machine learning", "python", "sql"}, record.SortedTags())
}
