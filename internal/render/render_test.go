package render

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crash-map-deck/internal/deckspec"
	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return r
}

func testDeck() *deckspec.Deck {
	return &deckspec.Deck{
		Title:    "Fatal crashes on US roads",
		Subtitle: "FARS 2015-2019",
		Author:   "couchcryptid",
		Data:     "data/crashes.json",
	}
}

func squareBoundary(id, name string) domain.BoundaryPolygon {
	return domain.BoundaryPolygon{
		ID:   id,
		Name: name,
		Kind: domain.BoundaryStates,
		Geometry: orb.MultiPolygon{orb.Polygon{orb.Ring{
			{-106, 26}, {-93, 26}, {-93, 34}, {-106, 34}, {-106, 26},
		}}},
	}
}

func testSlides() []SlideData {
	rec := domain.CrashRecord{
		Year:       2019,
		Month:      time.July,
		Season:     domain.SeasonSummer,
		Geo:        domain.Geo{Lat: 30.2672, Lon: -97.7431},
		State:      "TX",
		County:     "TRAVIS",
		Fatalities: 2,
	}

	return []SlideData{
		{Slide: deckspec.Slide{Kind: deckspec.KindText, Title: "Why maps?", Body: "Five years of FARS data."}},
		{
			Slide:   deckspec.Slide{Kind: deckspec.KindPoints, Title: "Every crash", Style: deckspec.Style{Cluster: true}},
			Records: []domain.CrashRecord{rec},
		},
		{
			Slide: deckspec.Slide{Kind: deckspec.KindHeatmap, Title: "Hot spots"},
			Heat:  []domain.HeatPoint{{Geo: rec.Geo, Weight: 2}},
		},
		{
			Slide: deckspec.Slide{Kind: deckspec.KindChoropleth, Title: "By state",
				Style: deckspec.Style{Palette: "reds", Bins: []float64{0, 10, 50}}},
			Cells:      []domain.ChoroplethCell{{BoundaryID: "48", Name: "Texas", Count: 42}},
			Boundaries: []domain.BoundaryPolygon{squareBoundary("48", "Texas")},
		},
		{
			Slide: deckspec.Slide{Kind: deckspec.KindMiniCharts, Title: "Seasonality"},
			Charts: []domain.MiniChartPoint{{
				BoundaryID: "48", Label: "Texas", Geo: domain.Geo{Lat: 30, Lon: -99.5},
				Series: []domain.SeriesValue{{Label: "Jan", Value: 3}, {Label: "Feb", Value: 1}},
			}},
		},
	}
}

func TestRender_FullDeck(t *testing.T) {
	r := testRenderer(t)

	out, err := r.Render(testDeck(), testSlides(), "2024-04-27T06:00:00Z")
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Fatal crashes on US roads</title>")
	assert.Contains(t, html, "built 2024-04-27T06:00:00Z")

	// One section per slide.
	for i := 0; i < 5; i++ {
		assert.Contains(t, html, `id="slide-`+string(rune('0'+i))+`"`)
	}

	// Text slide has no map container; the others do.
	assert.NotContains(t, html, `id="map-0"`)
	assert.Contains(t, html, `id="map-1"`)
	assert.Contains(t, html, `id="map-4"`)

	// Point payload carries the record and the defaults.
	assert.Contains(t, html, `"cluster":true`)
	assert.Contains(t, html, `"color":"#d7301f"`)
	assert.Contains(t, html, "TRAVIS, TX: 2 fatalities (Jul 2019)")

	// Heat payload uses [lat, lon, weight] triples.
	assert.Contains(t, html, "[30.2672,-97.7431,2]")

	// Choropleth carries per-feature colors and a legend.
	assert.Contains(t, html, `"value":42`)
	assert.Contains(t, html, `"color":"#fb6a4a"`, "42 lands in the 10-50 bin of reds")
	assert.Contains(t, html, `"label":"50+"`)

	// Minichart series survive the round trip.
	assert.Contains(t, html, `"label":"Jan","value":3`)
}

func TestRender_Deterministic(t *testing.T) {
	r := testRenderer(t)

	first, err := r.Render(testDeck(), testSlides(), "2024-04-27T06:00:00Z")
	require.NoError(t, err)
	second, err := r.Render(testDeck(), testSlides(), "2024-04-27T06:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRender_PointsSkipMissingCoordinates(t *testing.T) {
	r := testRenderer(t)
	slides := []SlideData{{
		Slide: deckspec.Slide{Kind: deckspec.KindPoints, Title: "p"},
		Records: []domain.CrashRecord{
			{Geo: domain.Geo{}, State: "TX"},
			{Geo: domain.Geo{Lat: 30, Lon: -97}, State: "TX", Month: time.May, Year: 2019},
		},
	}}

	out, err := r.Render(testDeck(), slides, "now")
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(out), `"lat":30`))
}

func TestRender_QuantileBinsWhenUnset(t *testing.T) {
	r := testRenderer(t)
	slides := []SlideData{{
		Slide:      deckspec.Slide{Kind: deckspec.KindChoropleth, Title: "c"},
		Cells:      []domain.ChoroplethCell{{BoundaryID: "48", Count: 7}},
		Boundaries: []domain.BoundaryPolygon{squareBoundary("48", "Texas")},
	}}

	out, err := r.Render(testDeck(), slides, "now")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"legend":[`)
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
