package linkindex

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/cold-email-agent/internal/types"
)

// Catalog column headers.
const (
	ColumnTechstack = "Techstack"
	ColumnLinks     = "Links"
)

// LoadCatalogFile reads a catalog CSV from disk.
func LoadCatalogFile(path string) ([]types.LinkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	records, err := LoadCatalogCSV(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return records, nil
}

// LoadCatalogCSV parses a catalog with "Techstack" and "Links" header columns.
// Other columns are ignored; rows with an empty link are skipped.
func LoadCatalogCSV(r io.Reader) ([]types.LinkRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("catalog is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	techCol, linkCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case ColumnTechstack:
			techCol = i
		case ColumnLinks:
			linkCol = i
		}
	}
	var missing []string
	if techCol < 0 {
		missing = append(missing, ColumnTechstack)
	}
	if linkCol < 0 {
		missing = append(missing, ColumnLinks)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("catalog is missing required columns: %s", strings.Join(missing, ", "))
	}

	var records []types.LinkRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row %d: %w", line, err)
		}
		if techCol >= len(row) || linkCol >= len(row) {
			continue
		}
		rec := types.NewLinkRecord(row[techCol], row[linkCol])
		if rec.URL == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
