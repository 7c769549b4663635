package linkindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogCSV(t *testing.T) {
	input := "Techstack,Links\n" +
		"\"Python, SQL\",https://a.example\n" +
		"Java,https://b.example\n" +
		"Go,\n"

	records, err := LoadCatalogCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Python, SQL", records[0].TechStack)
	assert.Equal(t, "https://a.example", records[0].URL)
	assert.Equal(t, []string{"python", "sql"}, records[0].SortedTags())
	assert.Equal(t, "https://b.example", records[1].URL)
}

func TestLoadCatalogCSV_ColumnOrderAndExtras(t *testing.T) {
	input := "\ufeffOwner, Links ,Techstack\n" +
		"me,https://c.example,\"React, TypeScript\"\n" +
		"short-row\n"

	records, err := LoadCatalogCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "React, TypeScript", records[0].TechStack)
	assert.Equal(t, "https://c.example", records[0].URL)
}

func TestLoadCatalogCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "catalog is empty"},
		{"missing links", "Techstack,URL\nGo,https://x\n", "missing required columns: Links"},
		{"missing both", "a,b\n", "missing required columns: Techstack, Links"},
		{"bad quoting", "Techstack,Links\n\"Go,https://x\n", "failed to read catalog row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalogCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	require.NoError(t, os.WriteFile(path, []byte("Techstack,Links\nGo,https://d.example\n"), 0644))

	records, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
