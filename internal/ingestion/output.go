package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file names written by WriteOutput
const (
	CleanedFileName  = "page.cleaned.txt"
	MetadataFileName = "page.meta.json"
)

// WriteOutput writes the cleaned page text and its metadata to outDir.
func WriteOutput(outDir string, cleanedText string, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, CleanedFileName)
	if err := os.WriteFile(cleanedPath, []byte(cleanedText), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, MetadataFileName), metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}
