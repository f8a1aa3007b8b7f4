package deckspec

import (
	"testing"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDeck = `
title = "Fatal crashes on US roads"
subtitle = "FARS 2015-2019"
author = "couchcryptid"
data = "data/crashes.json"

[boundaries]
source = "file"
path = "data/us-states.geojson"
kind = "states"

[[slides]]
kind = "text"
title = "Why maps?"
body = "Five years of FARS data, one map at a time."

[[slides]]
kind = "points"
title = "Every fatal crash, 2019"
year = 2019
[slides.style]
color = "#d7301f"
radius = 3
cluster = true

[[slides]]
kind = "heatmap"
title = "Where crashes concentrate"
year = 2019
[slides.style]
heat_radius = 18
heat_blur = 12
heat_weight = true

[[slides]]
kind = "choropleth"
title = "Crashes by state"
[slides.style]
palette = "reds"
metric = "count"
bins = [0.0, 100.0, 250.0, 500.0, 1000.0]

[[slides]]
kind = "minicharts"
title = "Seasonality by state"
[slides.style]
series = "monthly"
`

func TestParse_ValidDeck(t *testing.T) {
	deck, err := Parse([]byte(validDeck))
	require.NoError(t, err)

	assert.Equal(t, "Fatal crashes on US roads", deck.Title)
	assert.Equal(t, "data/crashes.json", deck.Data)
	assert.Equal(t, "file", deck.Boundaries.Source)
	assert.Equal(t, domain.BoundaryStates, deck.BoundaryKind())
	assert.True(t, deck.NeedsBoundaries())
	require.Len(t, deck.Slides, 5)

	points := deck.Slides[1]
	assert.Equal(t, KindPoints, points.Kind)
	assert.Equal(t, 2019, points.Year)
	assert.Equal(t, "#d7301f", points.Style.Color)
	assert.Equal(t, 3.0, points.Style.Radius)
	assert.True(t, points.Style.Cluster)

	choropleth := deck.Slides[3]
	assert.Equal(t, []float64{0, 100, 250, 500, 1000}, choropleth.Style.Bins)
	assert.Equal(t, "count", choropleth.Style.Metric)
}

func TestParse_DefaultBoundaryKind(t *testing.T) {
	deck, err := Parse([]byte(`
title = "t"
data = "d.json"
[[slides]]
kind = "points"
title = "p"
`))
	require.NoError(t, err)
	assert.Equal(t, domain.BoundaryStates, deck.BoundaryKind())
	assert.False(t, deck.NeedsBoundaries())
}

func TestParse_InvalidDecks(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		wantErr string
	}{
		{
			name:    "not toml",
			toml:    "{json: true}",
			wantErr: "decode deck definition",
		},
		{
			name:    "missing title",
			toml:    "data = \"d.json\"\n[[slides]]\nkind = \"text\"\n",
			wantErr: "title is required",
		},
		{
			name:    "missing data",
			toml:    "title = \"t\"\n[[slides]]\nkind = \"text\"\n",
			wantErr: "data path is required",
		},
		{
			name:    "no slides",
			toml:    "title = \"t\"\ndata = \"d.json\"\n",
			wantErr: "at least one slide",
		},
		{
			name:    "unknown slide kind",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[[slides]]\nkind = \"scatter3d\"\n",
			wantErr: "unknown slide kind",
		},
		{
			name:    "negative year",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[[slides]]\nkind = \"points\"\nyear = -1\n",
			wantErr: "must not be negative",
		},
		{
			name:    "non-increasing bins",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[[slides]]\nkind = \"choropleth\"\n[slides.style]\nbins = [0.0, 10.0, 10.0]\n",
			wantErr: "strictly increasing",
		},
		{
			name:    "unknown metric",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[[slides]]\nkind = \"choropleth\"\n[slides.style]\nmetric = \"median\"\n",
			wantErr: "unknown choropleth metric",
		},
		{
			name:    "unknown series",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[[slides]]\nkind = \"minicharts\"\n[slides.style]\nseries = \"hourly\"\n",
			wantErr: "unknown minichart series",
		},
		{
			name:    "file source without path",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[boundaries]\nsource = \"file\"\n[[slides]]\nkind = \"text\"\n",
			wantErr: "boundaries.path is required",
		},
		{
			name:    "unknown boundaries source",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[boundaries]\nsource = \"s3\"\n[[slides]]\nkind = \"text\"\n",
			wantErr: "unknown boundaries source",
		},
		{
			name:    "unknown boundaries kind",
			toml:    "title = \"t\"\ndata = \"d.json\"\n[boundaries]\nkind = \"zip-codes\"\n[[slides]]\nkind = \"text\"\n",
			wantErr: "unknown boundaries kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read deck definition")
}
