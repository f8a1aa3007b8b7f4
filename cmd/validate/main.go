// Command validate performs end-to-end integrity checks on the inputs to a
// deck build: the crash-record dataset, the deck definition, and optionally a
// boundary GeoJSON file. It verifies parse consistency, calendar derivation,
// deck/data agreement, and choropleth count preservation.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data crashes.json \
//	  -deck deck.toml \
//	  -boundaries states.geojson
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/crash-map-deck/internal/boundary"
	"github.com/couchcryptid/crash-map-deck/internal/dataset"
	"github.com/couchcryptid/crash-map-deck/internal/deckspec"
	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the crash-record dataset")
	deckPath := flag.String("deck", "", "path to the deck definition (optional)")
	boundaryPath := flag.String("boundaries", "", "path to a boundary GeoJSON file (optional)")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath, *deckPath, *boundaryPath); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath, deckPath, boundaryPath string) int {
	// Fixed clock so reparsing yields byte-identical derived records.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Crash Deck Input Validation ===")
	fmt.Println()

	records, err := dataset.Load(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDataset(records),
		validateCalendar(records),
	}

	var deck *deckspec.Deck
	if deckPath != "" {
		deck, err = deckspec.Load(deckPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load deck definition: %v\n", err)
			return 1
		}
		phases = append(phases, validateDeck(deck, records))
	}

	if boundaryPath != "" {
		boundaries, err := loadBoundaries(boundaryPath, deck)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load boundaries: %v\n", err)
			return 1
		}
		phases = append(phases, validateChoropleth(records, boundaries))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d\n", len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadBoundaries(path string, deck *deckspec.Deck) ([]domain.BoundaryPolygon, error) {
	kind := domain.BoundaryStates
	if deck != nil {
		kind = deck.BoundaryKind()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return boundary.NewFileSource(path, logger).Boundaries(context.Background(), kind)
}

// Phase 1: Dataset Integrity.
// Every record must carry the required fields and a well-formed ID.

func validateDataset(records []domain.CrashRecord) *phase {
	p := &phase{name: "Phase 1: Dataset Integrity"}

	if len(records) == 0 {
		p.errorf("dataset is empty")
		return p
	}

	seen := map[string]int{}
	for i := range records {
		r := &records[i]
		if r.ID == "" {
			p.errorf("record %d: missing ID", i)
		} else if len(r.ID) != len("crash-")+16 || r.ID[:6] != "crash-" {
			p.errorf("record %d: malformed ID %q", i, r.ID)
		}
		if r.CaseID == "" {
			p.errorf("record %d: missing case ID", i)
		}
		if r.CrashTime.IsZero() {
			p.errorf("record %d (%s): crash time is zero", i, r.CaseID)
		}
		if r.State == "" {
			p.errorf("record %d (%s): state is empty", i, r.CaseID)
		}
		if r.Fatalities < 0 {
			p.errorf("record %d (%s): negative fatalities", i, r.CaseID)
		}
		seen[r.ID]++
	}

	for id, n := range seen {
		if n > 1 {
			p.errorf("ID %s appears %d times", id, n)
		}
	}

	return p
}

// Phase 2: Calendar Derivation.
// Derived fields must agree with the crash time, and re-deriving must be a
// no-op.

func validateCalendar(records []domain.CrashRecord) *phase {
	p := &phase{name: "Phase 2: Calendar Derivation"}

	for i := range records {
		r := records[i]
		if r.Year != r.CrashTime.Year() {
			p.errorf("record %d (%s): year %d does not match crash time %s", i, r.CaseID, r.Year, r.CrashTime.Format(time.RFC3339))
		}
		if r.Month != r.CrashTime.Month() {
			p.errorf("record %d (%s): month %s does not match crash time", i, r.CaseID, r.Month)
		}
		if want := domain.SeasonOf(r.Month); r.Season != want {
			p.errorf("record %d (%s): season %q, expected %q for %s", i, r.CaseID, r.Season, want, r.Month)
		}

		again := domain.DeriveCalendar(r)
		if again.Year != r.Year || again.Month != r.Month || again.Season != r.Season {
			p.errorf("record %d (%s): re-derivation changed calendar fields", i, r.CaseID)
		}
	}

	return p
}

// Phase 3: Deck Consistency.
// Slide year filters must select a non-empty subset of the dataset.

func validateDeck(deck *deckspec.Deck, records []domain.CrashRecord) *phase {
	p := &phase{name: "Phase 3: Deck Consistency"}

	years := map[int]int{}
	for i := range records {
		years[records[i].Year]++
	}

	for i, slide := range deck.Slides {
		if slide.Kind == deckspec.KindText || slide.Year == 0 {
			continue
		}
		subset := domain.FilterYear(records, slide.Year)
		if len(subset) != years[slide.Year] {
			p.errorf("slide %d (%q): filter selected %d records, dataset has %d for %d",
				i, slide.Title, len(subset), years[slide.Year], slide.Year)
		}
		if len(subset) == 0 {
			p.errorf("slide %d (%q): no records for year %d", i, slide.Title, slide.Year)
		}
	}

	return p
}

// Phase 4: Choropleth Totals.
// Cell counts must sum to the record count, with unassigned records preserved
// in the reserved cell.

func validateChoropleth(records []domain.CrashRecord, boundaries []domain.BoundaryPolygon) *phase {
	p := &phase{name: "Phase 4: Choropleth Totals"}

	if len(boundaries) == 0 {
		p.errorf("boundary file has no polygons")
		return p
	}

	cells := domain.BuildChoropleth(records, boundaries)
	total := 0
	for _, cell := range cells {
		if cell.Count < 0 {
			p.errorf("cell %s: negative count", cell.BoundaryID)
		}
		total += cell.Count
	}
	if total != len(records) {
		p.errorf("cell counts sum to %d, dataset has %d records", total, len(records))
	}

	for _, cell := range cells {
		if cell.BoundaryID == domain.UnassignedBoundaryID && cell.Count > 0 {
			fmt.Printf("  Note: %d record(s) fall outside every boundary polygon\n", cell.Count)
		}
	}

	return p
}
