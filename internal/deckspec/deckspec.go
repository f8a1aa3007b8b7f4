// Package deckspec parses the TOML deck definition: the slide sequence and
// the presentation parameters each map widget receives.
package deckspec

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

// SlideKind identifies which visualization a slide renders.
type SlideKind string

const (
	KindText       SlideKind = "text"
	KindPoints     SlideKind = "points"
	KindHeatmap    SlideKind = "heatmap"
	KindChoropleth SlideKind = "choropleth"
	KindMiniCharts SlideKind = "minicharts"
)

// Deck is the parsed deck definition.
type Deck struct {
	Title    string `toml:"title"`
	Subtitle string `toml:"subtitle"`
	Author   string `toml:"author"`
	// Data is the path to the serialized crash-record table.
	Data       string     `toml:"data"`
	Boundaries Boundaries `toml:"boundaries"`
	Slides     []Slide    `toml:"slides"`
}

// Boundaries selects where boundary polygons come from.
type Boundaries struct {
	// Source is "remote" (boundary provider over HTTP) or "file".
	Source string `toml:"source"`
	// Path is the local GeoJSON file when Source is "file".
	Path string `toml:"path"`
	// Kind is the administrative level: states, counties, districts.
	Kind string `toml:"kind"`
}

// Slide is one deck entry: a visualization kind, an optional year filter,
// and its presentation parameters.
type Slide struct {
	Kind  SlideKind `toml:"kind"`
	Title string    `toml:"title"`
	Body  string    `toml:"body"`
	// Year filters the record set; 0 means all years.
	Year  int   `toml:"year"`
	Style Style `toml:"style"`
}

// Style carries the presentation parameters handed to the map widget.
// Zero values fall back to renderer defaults.
type Style struct {
	Palette string    `toml:"palette"` // reds, blues, viridis
	Color   string    `toml:"color"`   // point color, hex
	Radius  float64   `toml:"radius"`  // point radius in pixels
	Cluster bool      `toml:"cluster"` // marker clustering toggle
	Bins    []float64 `toml:"bins"`    // choropleth thresholds, strictly increasing
	Metric  string    `toml:"metric"`  // choropleth metric: count or rate
	Series  string    `toml:"series"`  // minichart series: monthly or involvement

	HeatRadius int  `toml:"heat_radius"`
	HeatBlur   int  `toml:"heat_blur"`
	HeatWeight bool `toml:"heat_weight"` // weight heat points by fatalities
}

// Load reads and validates a deck definition from path.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck definition: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML deck definition.
func Parse(data []byte) (*Deck, error) {
	var deck Deck
	if err := toml.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("decode deck definition: %w", err)
	}
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return &deck, nil
}

// Validate checks the deck for conditions that would otherwise surface as
// confusing render-time failures.
func (d *Deck) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("deck: title is required")
	}
	if d.Data == "" {
		return fmt.Errorf("deck: data path is required")
	}
	if len(d.Slides) == 0 {
		return fmt.Errorf("deck: at least one slide is required")
	}

	switch d.Boundaries.Source {
	case "", "remote":
	case "file":
		if d.Boundaries.Path == "" {
			return fmt.Errorf("deck: boundaries.path is required when source is \"file\"")
		}
	default:
		return fmt.Errorf("deck: unknown boundaries source %q", d.Boundaries.Source)
	}
	if d.Boundaries.Kind != "" && !validBoundaryKind(d.Boundaries.Kind) {
		return fmt.Errorf("deck: unknown boundaries kind %q", d.Boundaries.Kind)
	}

	for i, slide := range d.Slides {
		if err := slide.validate(); err != nil {
			return fmt.Errorf("deck: slide %d (%q): %w", i, slide.Title, err)
		}
	}
	return nil
}

// BoundaryKind returns the configured boundary kind, defaulting to states.
func (d *Deck) BoundaryKind() domain.BoundaryKind {
	if d.Boundaries.Kind == "" {
		return domain.BoundaryStates
	}
	return domain.BoundaryKind(d.Boundaries.Kind)
}

// NeedsBoundaries reports whether any slide requires boundary polygons.
func (d *Deck) NeedsBoundaries() bool {
	for _, slide := range d.Slides {
		if slide.Kind == KindChoropleth || slide.Kind == KindMiniCharts {
			return true
		}
	}
	return false
}

func (s Slide) validate() error {
	switch s.Kind {
	case KindText, KindPoints, KindHeatmap, KindChoropleth, KindMiniCharts:
	default:
		return fmt.Errorf("unknown slide kind %q", s.Kind)
	}

	if s.Year < 0 {
		return fmt.Errorf("year must not be negative, got %d", s.Year)
	}

	for i := 1; i < len(s.Style.Bins); i++ {
		if s.Style.Bins[i] <= s.Style.Bins[i-1] {
			return fmt.Errorf("bins must be strictly increasing, got %v", s.Style.Bins)
		}
	}

	switch s.Style.Metric {
	case "", "count", "rate":
	default:
		return fmt.Errorf("unknown choropleth metric %q", s.Style.Metric)
	}

	switch s.Style.Series {
	case "", string(domain.SeriesMonthly), string(domain.SeriesInvolvement):
	default:
		return fmt.Errorf("unknown minichart series %q", s.Style.Series)
	}

	return nil
}

func validBoundaryKind(kind string) bool {
	switch domain.BoundaryKind(kind) {
	case domain.BoundaryStates, domain.BoundaryCounties, domain.BoundaryDistricts:
		return true
	}
	return false
}
