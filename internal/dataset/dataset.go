// Package dataset loads serialized crash-record tables from the local data
// directory. Two formats are supported: the flat JSON array written by the
// upstream ETL (and by cmd/ingest), and FARS-style accident CSV extracts.
package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

// FileSource adapts a dataset file to the pipeline's Source interface.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a Source reading crash records from path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// LoadRecords reads and parses the dataset file.
func (s *FileSource) LoadRecords(_ context.Context) ([]domain.CrashRecord, error) {
	records, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dataset loaded", "path", s.path, "records", len(records))
	return records, nil
}

// Load reads a crash-record table from a .json or .csv file. Any row that
// fails to parse aborts the load with the row named; there is no partial
// recovery (a malformed dataset is a build failure).
func Load(path string) ([]domain.CrashRecord, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return loadJSON(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .json or .csv)", ext)
	}
}

func loadJSON(path string) ([]domain.CrashRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var rows []domain.RawCrashRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}

	records := make([]domain.CrashRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := domain.ParseRawRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset %s row %d: %w", path, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func loadCSV(path string) ([]domain.CrashRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	if _, ok := colIdx["DATE"]; !ok {
		return nil, fmt.Errorf("dataset %s: missing DATE column", path)
	}

	records := make([]domain.CrashRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		raw := domain.RawCrashRow{
			CaseID:      get(row, colIdx, "ST_CASE"),
			Date:        get(row, colIdx, "DATE"),
			Time:        get(row, colIdx, "TIME"),
			State:       get(row, colIdx, "STATE"),
			County:      get(row, colIdx, "COUNTY"),
			Lat:         get(row, colIdx, "LATITUDE"),
			Lon:         get(row, colIdx, "LONGITUD"),
			Fatalities:  get(row, colIdx, "FATALS"),
			DrunkDrv:    get(row, colIdx, "DRUNK_DR"),
			Pedestrians: get(row, colIdx, "PEDS"),
			Persons:     get(row, colIdx, "PERSONS"),
		}
		rec, err := domain.ParseRawRow(raw)
		if err != nil {
			return nil, fmt.Errorf("dataset %s row %d: %w", path, i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
