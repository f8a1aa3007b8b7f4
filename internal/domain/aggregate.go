package domain

import (
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SeriesKind selects the per-boundary series built for mini-chart slides.
type SeriesKind string

const (
	// SeriesMonthly is a twelve-value series of crash counts by month.
	SeriesMonthly SeriesKind = "monthly"
	// SeriesInvolvement breaks crashes down by involvement category.
	SeriesInvolvement SeriesKind = "involvement"
)

// BuildChoropleth joins records against boundaries and returns one cell per
// boundary, ordered by boundary ID, plus a trailing unassigned cell when any
// record falls outside every polygon. The per-cell counts always sum to
// len(records).
func BuildChoropleth(records []CrashRecord, boundaries []BoundaryPolygon) []ChoroplethCell {
	assigned := assignRecords(records, boundaries)

	cells := make([]ChoroplethCell, 0, len(boundaries)+1)
	for _, b := range boundaries {
		recs := assigned[b.ID]
		cell := ChoroplethCell{
			BoundaryID: b.ID,
			Name:       b.Name,
			Label:      b.Label,
			Count:      len(recs),
		}
		for _, rec := range recs {
			cell.Fatalities += rec.Fatalities
		}
		if b.Population > 0 {
			cell.Rate = float64(cell.Count) / float64(b.Population) * 100_000
		}
		cells = append(cells, cell)
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i].BoundaryID < cells[j].BoundaryID })

	if unmatched := assigned[UnassignedBoundaryID]; len(unmatched) > 0 {
		cell := ChoroplethCell{
			BoundaryID: UnassignedBoundaryID,
			Name:       "Unassigned",
			Label:      "Outside mapped boundaries",
			Count:      len(unmatched),
		}
		for _, rec := range unmatched {
			cell.Fatalities += rec.Fatalities
		}
		cells = append(cells, cell)
	}

	return cells
}

// BuildHeatPoints converts records into weighted heat-layer points. Records
// without coordinates are skipped. When weightByFatalities is false every
// point carries weight 1.
func BuildHeatPoints(records []CrashRecord, weightByFatalities bool) []HeatPoint {
	points := make([]HeatPoint, 0, len(records))
	for _, rec := range records {
		if rec.Geo.IsZero() {
			continue
		}
		weight := 1.0
		if weightByFatalities && rec.Fatalities > 0 {
			weight = float64(rec.Fatalities)
		}
		points = append(points, HeatPoint{Geo: rec.Geo, Weight: weight})
	}
	return points
}

// BuildMiniCharts aggregates records per boundary into chart series anchored
// at the boundary centroid. Boundaries with no assigned records are omitted.
// Output is ordered by boundary ID.
func BuildMiniCharts(records []CrashRecord, boundaries []BoundaryPolygon, kind SeriesKind) []MiniChartPoint {
	assigned := assignRecords(records, boundaries)

	points := make([]MiniChartPoint, 0, len(boundaries))
	for _, b := range boundaries {
		recs := assigned[b.ID]
		if len(recs) == 0 {
			continue
		}

		centroid, _ := planar.CentroidArea(b.Geometry)
		label := b.Label
		if label == "" {
			label = b.Name
		}
		points = append(points, MiniChartPoint{
			BoundaryID: b.ID,
			Label:      label,
			Geo:        Geo{Lat: centroid.Lat(), Lon: centroid.Lon()},
			Series:     buildSeries(recs, kind),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].BoundaryID < points[j].BoundaryID })
	return points
}

func buildSeries(records []CrashRecord, kind SeriesKind) []SeriesValue {
	switch kind {
	case SeriesInvolvement:
		var fatalities, drunk, peds int
		for _, rec := range records {
			fatalities += rec.Fatalities
			drunk += rec.DrunkDrv
			peds += rec.Pedestrians
		}
		return []SeriesValue{
			{Label: "fatalities", Value: float64(fatalities)},
			{Label: "drunk drivers", Value: float64(drunk)},
			{Label: "pedestrians", Value: float64(peds)},
		}
	default: // SeriesMonthly
		var byMonth [12]int
		for _, rec := range records {
			if rec.Month >= time.January && rec.Month <= time.December {
				byMonth[rec.Month-1]++
			}
		}
		series := make([]SeriesValue, 12)
		for i, count := range byMonth {
			series[i] = SeriesValue{
				Label: time.Month(i + 1).String()[:3],
				Value: float64(count),
			}
		}
		return series
	}
}

// assignRecords performs the spatial join: each record goes to the first
// boundary (in input order) whose multipolygon contains its coordinates.
// Records with no coordinates or outside every polygon are grouped under
// UnassignedBoundaryID.
func assignRecords(records []CrashRecord, boundaries []BoundaryPolygon) map[string][]CrashRecord {
	assigned := make(map[string][]CrashRecord, len(boundaries)+1)
	for _, rec := range records {
		id := UnassignedBoundaryID
		if !rec.Geo.IsZero() {
			pt := orb.Point{rec.Geo.Lon, rec.Geo.Lat}
			for _, b := range boundaries {
				if planar.MultiPolygonContains(b.Geometry, pt) {
					id = b.ID
					break
				}
			}
		}
		assigned[id] = append(assigned[id], rec)
	}
	return assigned
}
