// Package render turns aggregated crash data into a single self-contained
// HTML slide deck. The heavy lifting (tiling, clustering, heat kernels) stays
// in Leaflet and its plugins, loaded from CDN in the emitted document; this
// package only prepares the per-slide JSON payloads and executes the template.
package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/crash-map-deck/internal/deckspec"
	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

//go:embed deck.html.tmpl
var deckTemplate string

// Renderer executes the embedded deck template.
type Renderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// New parses the embedded template and returns a Renderer.
func New(logger *slog.Logger) (*Renderer, error) {
	tmpl, err := template.New("deck").Parse(deckTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse deck template: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// SlideData is the renderer input for one slide: the deck entry plus the
// aggregated snapshot it visualizes. Only the fields relevant to the slide
// kind are populated.
type SlideData struct {
	Slide      deckspec.Slide
	Records    []domain.CrashRecord
	Heat       []domain.HeatPoint
	Cells      []domain.ChoroplethCell
	Boundaries []domain.BoundaryPolygon
	Charts     []domain.MiniChartPoint
}

// deckView is the root template context.
type deckView struct {
	Title       string
	Subtitle    string
	Author      string
	GeneratedAt string
	Slides      []slideView
}

type slideView struct {
	Index   int
	Kind    string
	Title   string
	Body    string
	HasMap  bool
	Payload template.JS
}

// Render produces the complete deck HTML.
func (r *Renderer) Render(deck *deckspec.Deck, slides []SlideData, generatedAt string) ([]byte, error) {
	views := make([]slideView, 0, len(slides))
	for i, data := range slides {
		view, err := r.buildSlideView(i, data)
		if err != nil {
			return nil, fmt.Errorf("slide %d (%q): %w", i, data.Slide.Title, err)
		}
		views = append(views, view)
	}

	ctx := deckView{
		Title:       deck.Title,
		Subtitle:    deck.Subtitle,
		Author:      deck.Author,
		GeneratedAt: generatedAt,
		Slides:      views,
	}

	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("execute deck template: %w", err)
	}
	return []byte(buf.String()), nil
}

func (r *Renderer) buildSlideView(index int, data SlideData) (slideView, error) {
	view := slideView{
		Index: index,
		Kind:  string(data.Slide.Kind),
		Title: data.Slide.Title,
		Body:  data.Slide.Body,
	}

	var payload any
	switch data.Slide.Kind {
	case deckspec.KindText:
		view.Payload = template.JS("null")
		return view, nil
	case deckspec.KindPoints:
		payload = buildPointsPayload(data.Slide.Style, data.Records)
	case deckspec.KindHeatmap:
		payload = buildHeatPayload(data.Slide.Style, data.Heat)
	case deckspec.KindChoropleth:
		p, err := buildChoroplethPayload(data.Slide.Style, data.Cells, data.Boundaries)
		if err != nil {
			return slideView{}, err
		}
		payload = p
	case deckspec.KindMiniCharts:
		payload = buildMiniChartPayload(data.Slide.Style, data.Charts)
	default:
		return slideView{}, fmt.Errorf("unknown slide kind %q", data.Slide.Kind)
	}

	js, err := marshalTemplateJS(payload)
	if err != nil {
		return slideView{}, err
	}
	view.HasMap = true
	view.Payload = js
	return view, nil
}

// marshalTemplateJS encodes a payload as JSON and tags it as safe JavaScript
// so the template can inline it into a <script> block.
func marshalTemplateJS(value any) (template.JS, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return template.JS(""), fmt.Errorf("marshal slide payload: %w", err)
	}
	return template.JS(payload), nil
}

// --- per-kind payloads ---

type pointsPayload struct {
	Color   string       `json:"color"`
	Radius  float64      `json:"radius"`
	Cluster bool         `json:"cluster"`
	Points  []pointEntry `json:"points"`
}

type pointEntry struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

func buildPointsPayload(style deckspec.Style, records []domain.CrashRecord) pointsPayload {
	p := pointsPayload{
		Color:   style.Color,
		Radius:  style.Radius,
		Cluster: style.Cluster,
		Points:  make([]pointEntry, 0, len(records)),
	}
	if p.Color == "" {
		p.Color = "#d7301f"
	}
	if p.Radius <= 0 {
		p.Radius = 3
	}
	for _, rec := range records {
		if rec.Geo.IsZero() {
			continue
		}
		label := fmt.Sprintf("%s, %s: %d fatalities (%s %d)",
			rec.County, rec.State, rec.Fatalities, rec.Month.String()[:3], rec.Year)
		p.Points = append(p.Points, pointEntry{Lat: rec.Geo.Lat, Lon: rec.Geo.Lon, Label: label})
	}
	return p
}

type heatPayload struct {
	Radius int          `json:"radius"`
	Blur   int          `json:"blur"`
	Points [][3]float64 `json:"points"` // [lat, lon, weight]
}

func buildHeatPayload(style deckspec.Style, heat []domain.HeatPoint) heatPayload {
	p := heatPayload{
		Radius: style.HeatRadius,
		Blur:   style.HeatBlur,
		Points: make([][3]float64, 0, len(heat)),
	}
	if p.Radius <= 0 {
		p.Radius = 15
	}
	if p.Blur <= 0 {
		p.Blur = 10
	}
	for _, pt := range heat {
		p.Points = append(p.Points, [3]float64{pt.Geo.Lat, pt.Geo.Lon, pt.Weight})
	}
	return p
}

type choroplethPayload struct {
	Metric  string          `json:"metric"`
	Legend  []legendEntry   `json:"legend"`
	GeoJSON json.RawMessage `json:"geojson"`
}

type legendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

func buildChoroplethPayload(style deckspec.Style, cells []domain.ChoroplethCell, boundaries []domain.BoundaryPolygon) (choroplethPayload, error) {
	metric := style.Metric
	if metric == "" {
		metric = "count"
	}

	values := make(map[string]float64, len(cells))
	for _, cell := range cells {
		if metric == "rate" {
			values[cell.BoundaryID] = cell.Rate
		} else {
			values[cell.BoundaryID] = float64(cell.Count)
		}
	}

	bins := style.Bins
	if len(bins) == 0 {
		observed := make([]float64, 0, len(boundaries))
		for _, b := range boundaries {
			observed = append(observed, values[b.ID])
		}
		bins = quantileBins(observed, 5)
	}

	fc := geojson.NewFeatureCollection()
	for _, b := range boundaries {
		value := values[b.ID]
		f := geojson.NewFeature(b.Geometry)
		f.ID = b.ID
		f.Properties = geojson.Properties{
			"name":  b.Name,
			"label": b.Label,
			"value": value,
			"color": paletteColor(style.Palette, classIndex(value, bins), len(bins)),
		}
		fc.Append(f)
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		return choroplethPayload{}, fmt.Errorf("marshal choropleth geojson: %w", err)
	}

	legend := make([]legendEntry, len(bins))
	for i := range bins {
		legend[i] = legendEntry{
			Label: legendLabel(bins, i),
			Color: paletteColor(style.Palette, i, len(bins)),
		}
	}

	return choroplethPayload{Metric: metric, Legend: legend, GeoJSON: raw}, nil
}

type miniChartPayload struct {
	Color  string       `json:"color"`
	Charts []chartEntry `json:"charts"`
}

type chartEntry struct {
	Lat    float64              `json:"lat"`
	Lon    float64              `json:"lon"`
	Label  string               `json:"label"`
	Series []domain.SeriesValue `json:"series"`
}

func buildMiniChartPayload(style deckspec.Style, charts []domain.MiniChartPoint) miniChartPayload {
	p := miniChartPayload{
		Color:  style.Color,
		Charts: make([]chartEntry, 0, len(charts)),
	}
	if p.Color == "" {
		p.Color = "#3182bd"
	}
	for _, chart := range charts {
		p.Charts = append(p.Charts, chartEntry{
			Lat:    chart.Geo.Lat,
			Lon:    chart.Geo.Lon,
			Label:  chart.Label,
			Series: chart.Series,
		})
	}
	return p
}
