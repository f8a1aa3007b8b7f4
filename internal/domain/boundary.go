package domain

import (
	"context"

	"github.com/paulmach/orb"
)

// BoundaryKind identifies the administrative level of a boundary set.
type BoundaryKind string

const (
	BoundaryStates    BoundaryKind = "states"
	BoundaryCounties  BoundaryKind = "counties"
	BoundaryDistricts BoundaryKind = "districts" // congressional districts
)

// UnassignedBoundaryID is the reserved cell ID for records that fall outside
// every boundary polygon. Keeping those records in a reserved cell preserves
// the aggregation invariant: the per-cell counts always sum to the size of
// the input set.
const UnassignedBoundaryID = "unassigned"

// BoundaryPolygon is a named administrative region with its polygon geometry.
type BoundaryPolygon struct {
	ID         string
	Name       string
	Label      string // display label for popups and legends
	Kind       BoundaryKind
	Geometry   orb.MultiPolygon
	Population int // 0 when the source carries no population figure
}

// BoundarySource provides administrative boundary polygons for a given kind.
// Implementations fetch from the boundary provider or read local GeoJSON.
type BoundarySource interface {
	Boundaries(ctx context.Context, kind BoundaryKind) ([]BoundaryPolygon, error)
}

// ChoroplethCell is a boundary polygon annotated with aggregate crash figures.
type ChoroplethCell struct {
	BoundaryID string
	Name       string
	Label      string
	Count      int
	Fatalities int
	Rate       float64 // crashes per 100k population, 0 when population unknown
}

// SeriesValue is one labeled value in a mini-chart series.
type SeriesValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MiniChartPoint is a geographic anchor with an ordered numeric series for
// small-multiple chart rendering on the map.
type MiniChartPoint struct {
	BoundaryID string        `json:"boundary_id"`
	Label      string        `json:"label"`
	Geo        Geo           `json:"geo"`
	Series     []SeriesValue `json:"series"`
}

// HeatPoint is a weighted coordinate consumed by the heat layer.
type HeatPoint struct {
	Geo    Geo     `json:"geo"`
	Weight float64 `json:"weight"`
}
