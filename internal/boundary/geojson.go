package boundary

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

// decodeFeatureCollection maps a GeoJSON feature collection onto boundary
// polygons. Features without polygon geometry or a resolvable ID are skipped;
// callers decide whether an empty result is an error.
func decodeFeatureCollection(data []byte, kind domain.BoundaryKind) ([]domain.BoundaryPolygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal feature collection: %w", err)
	}

	boundaries := make([]domain.BoundaryPolygon, 0, len(fc.Features))
	for _, f := range fc.Features {
		var geom orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			geom = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			geom = g
		default:
			continue
		}

		name := f.Properties.MustString("name", f.Properties.MustString("NAME", ""))
		b := domain.BoundaryPolygon{
			ID:         featureID(f, name),
			Name:       name,
			Label:      f.Properties.MustString("label", name),
			Kind:       kind,
			Geometry:   geom,
			Population: f.Properties.MustInt("population", f.Properties.MustInt("POP", 0)),
		}
		if b.ID == "" {
			continue
		}
		boundaries = append(boundaries, b)
	}

	return boundaries, nil
}

// featureID resolves the region identifier. The public boundary files vary:
// folium-style state files carry a top-level feature id, census cartographic
// files carry GEOID in the properties.
func featureID(f *geojson.Feature, fallback string) string {
	if id, ok := f.ID.(string); ok && id != "" {
		return id
	}
	for _, key := range []string{"id", "GEOID", "STATEFP"} {
		if v := f.Properties.MustString(key, ""); v != "" {
			return v
		}
	}
	return fallback
}
