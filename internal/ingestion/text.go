// Package ingestion turns a careers page, a local file or pasted text into the normalized text sent to extraction.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	innerWhitespace  = regexp.MustCompile(`\s+`)
	excessBlankLines = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes text while preserving its structure: line endings
// become LF, trailing whitespace is trimmed, runs of spaces inside a line are
// collapsed, headings and bullets keep their shape and at most one blank line
// separates blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := excessBlankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// CollapseWhitespace reduces text to a single line with single spaces, the
// form the extraction prompt embeds.
func CollapseWhitespace(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// Markdown headings lose their indentation.
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := strings.Repeat(" ", len(line)-len(trimmed))
	if isBulletLine(trimmed) {
		return indent + trimmed
	}
	return indent + innerWhitespace.ReplaceAllString(trimmed, " ")
}

func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

// IngestFromFile reads a saved careers page (plain text), cleans it and returns it with metadata.
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleaned := CleanText(string(content))
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: %s is empty", ErrNoContent, path)
	}
	metadata := NewMetadata(cleaned, SourceFile)
	metadata.Path = path
	return cleaned, metadata, nil
}

// IngestText cleans pasted page text.
func IngestText(raw string) (string, *Metadata, error) {
	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", nil, ErrNoContent
	}
	return cleaned, NewMetadata(cleaned, SourceText), nil
}
