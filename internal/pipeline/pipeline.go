// Package pipeline orchestrates the one-shot deck build: load the crash
// records, derive and aggregate the per-slide tables, render the deck, and
// write the output file. Execution is linear and single-pass; any failure
// aborts the build with the triggering condition named.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/crash-map-deck/internal/deckspec"
	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/couchcryptid/crash-map-deck/internal/observability"
	"github.com/couchcryptid/crash-map-deck/internal/render"
)

// Source loads the crash-record table.
type Source interface {
	LoadRecords(ctx context.Context) ([]domain.CrashRecord, error)
}

// Renderer produces the deck HTML from the aggregated slide data.
type Renderer interface {
	Render(deck *deckspec.Deck, slides []render.SlideData, generatedAt string) ([]byte, error)
}

// Pipeline wires the build stages together.
type Pipeline struct {
	source     Source
	boundaries domain.BoundarySource
	renderer   Renderer
	deck       *deckspec.Deck
	outPath    string
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// New creates a Pipeline. The boundary source may be nil when no slide needs
// boundary polygons.
func New(source Source, boundaries domain.BoundarySource, renderer Renderer, deck *deckspec.Deck, outPath string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:     source,
		boundaries: boundaries,
		renderer:   renderer,
		deck:       deck,
		outPath:    outPath,
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
	}
}

// SetClock swaps the build timestamp source, for deterministic test output.
func (p *Pipeline) SetClock(c clockwork.Clock) {
	p.clock = c
}

// Build runs the load-aggregate-render sequence once and writes the deck.
func (p *Pipeline) Build(ctx context.Context) error {
	start := time.Now()
	p.metrics.BuildRunning.Set(1)
	defer p.metrics.BuildRunning.Set(0)

	if err := p.build(ctx); err != nil {
		p.metrics.BuildsTotal.WithLabelValues("error").Inc()
		return err
	}

	p.metrics.BuildsTotal.WithLabelValues("success").Inc()
	p.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	return nil
}

func (p *Pipeline) build(ctx context.Context) error {
	records, err := p.source.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load crash records: %w", err)
	}
	p.metrics.RecordsLoaded.Add(float64(len(records)))
	p.logger.Info("records loaded", "count", len(records))

	var boundaries []domain.BoundaryPolygon
	if p.deck.NeedsBoundaries() {
		if p.boundaries == nil {
			return fmt.Errorf("deck needs boundaries but no boundary source is configured")
		}
		kind := p.deck.BoundaryKind()
		boundaries, err = p.boundaries.Boundaries(ctx, kind)
		if err != nil {
			return fmt.Errorf("fetch %s boundaries: %w", kind, err)
		}
		p.logger.Info("boundaries ready", "kind", kind, "count", len(boundaries))
	}

	slides := make([]render.SlideData, 0, len(p.deck.Slides))
	for _, slide := range p.deck.Slides {
		slides = append(slides, buildSlideData(slide, records, boundaries))
	}

	html, err := p.renderer.Render(p.deck, slides, p.clock.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("render deck: %w", err)
	}

	if err := os.WriteFile(p.outPath, html, 0o644); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}

	p.metrics.SlidesRendered.Add(float64(len(slides)))
	p.logger.Info("deck written",
		"path", p.outPath,
		"slides", len(slides),
		"bytes", len(html),
	)
	return nil
}

// buildSlideData filters the record snapshot per the slide's year and runs
// the aggregation its kind requires. Each slide gets its own derived table;
// the base record set is never mutated.
func buildSlideData(slide deckspec.Slide, records []domain.CrashRecord, boundaries []domain.BoundaryPolygon) render.SlideData {
	data := render.SlideData{Slide: slide}

	subset := records
	if slide.Year > 0 {
		subset = domain.FilterYear(records, slide.Year)
	}

	switch slide.Kind {
	case deckspec.KindPoints:
		data.Records = subset
	case deckspec.KindHeatmap:
		data.Heat = domain.BuildHeatPoints(subset, slide.Style.HeatWeight)
	case deckspec.KindChoropleth:
		data.Cells = domain.BuildChoropleth(subset, boundaries)
		data.Boundaries = boundaries
	case deckspec.KindMiniCharts:
		kind := domain.SeriesKind(slide.Style.Series)
		if kind == "" {
			kind = domain.SeriesMonthly
		}
		data.Charts = domain.BuildMiniCharts(subset, boundaries, kind)
	}

	return data
}
