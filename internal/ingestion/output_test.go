package ingestion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	text, metadata, err := IngestText("Data Analyst\nPython, SQL")
	require.NoError(t, err)

	require.NoError(t, WriteOutput(dir, text, metadata))

	cleaned, err := os.ReadFile(filepath.Join(dir, CleanedFileName))
	require.NoError(t, err)
	assert.Equal(t, text, string(cleaned))

	raw, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	require.NoError(t, err)
	var decoded Metadata
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, SourceText, decoded.Source)
	assert.Equal(t, metadata.Hash, decoded.Hash)
}
