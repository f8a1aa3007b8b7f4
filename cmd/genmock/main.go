// Command genmock reads a FARS accident CSV export and generates the JSON
// dataset fixtures used by the test suites. It runs the actual domain parser
// so fixture contents match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/fars/accident_2019.csv \
//	  -raw-out internal/dataset/testdata/crashes_raw.json \
//	  -parsed-out internal/dataset/testdata/crashes_parsed.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "FARS accident CSV file")
	rawOut := flag.String("raw-out", "", "output path for the raw JSON fixture")
	parsedOut := flag.String("parsed-out", "", "output path for the parsed JSON fixture")
	flag.Parse()

	if *csvPath == "" || *rawOut == "" || *parsedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -raw-out, -parsed-out")
	}

	// Fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rows, records, err := processCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("total: %d rows, %d parsed", len(rows), len(records))

	if err := writeJSON(*rawOut, rows); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*parsedOut, records); err != nil {
		return fmt.Errorf("writing parsed fixture: %w", err)
	}
	log.Printf("wrote parsed fixture: %s", *parsedOut)

	printStats(records)
	return nil
}

func processCSV(path string) ([]domain.RawCrashRow, []domain.CrashRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[h] = i
	}

	var raw []domain.RawCrashRow
	var records []domain.CrashRecord

	for i, row := range rows[1:] {
		if len(row) < len(header) {
			continue
		}

		r := domain.RawCrashRow{
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

		rec, err := domain.ParseRawRow(r)
		if err != nil {
			log.Printf("skipping row %d: %v", i, err)
			continue
		}

		raw = append(raw, r)
		records = append(records, rec)
	}

	return raw, records, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type keyCount struct {
	key   string
	count int
}

func printStats(records []domain.CrashRecord) {
	yearCounts := map[int]int{}
	seasonCounts := map[domain.Season]int{}
	stateCounts := map[string]int{}
	var fatalities, withCoords int

	for i := range records {
		r := &records[i]
		yearCounts[r.Year]++
		seasonCounts[r.Season]++
		stateCounts[r.State]++
		fatalities += r.Fatalities
		if !r.Geo.IsZero() {
			withCoords++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(records))
	fmt.Printf("Fatalities: %d\n", fatalities)
	fmt.Printf("With coordinates: %d\n", withCoords)
	fmt.Printf("Seasons: summer=%d, winter=%d\n",
		seasonCounts[domain.SeasonSummer], seasonCounts[domain.SeasonWinter])

	years := make([]int, 0, len(yearCounts))
	for y := range yearCounts {
		years = append(years, y)
	}
	sort.Ints(years)
	fmt.Printf("Years: ")
	for _, y := range years {
		fmt.Printf("%d=%d ", y, yearCounts[y])
	}
	fmt.Println()

	sc := make([]keyCount, 0, len(stateCounts))
	for s, c := range stateCounts {
		sc = append(sc, keyCount{s, c})
	}
	sort.Slice(sc, func(i, j int) bool { return sc[i].count > sc[j].count })
	fmt.Printf("States (%d): ", len(sc))
	for _, s := range sc[:min(10, len(sc))] {
		fmt.Printf("%s=%d ", s.key, s.count)
	}
	fmt.Println()
}
