package boundary

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

// FileSource reads boundary polygons from a local GeoJSON file, for builds
// that should not touch the network.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a boundary source backed by a GeoJSON file.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Boundaries decodes the file as a feature collection of the given kind.
func (s *FileSource) Boundaries(_ context.Context, kind domain.BoundaryKind) ([]domain.BoundaryPolygon, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	boundaries, err := decodeFeatureCollection(data, kind)
	if err != nil {
		return nil, fmt.Errorf("boundary file %s: %w", s.path, err)
	}
	if len(boundaries) == 0 {
		return nil, fmt.Errorf("boundary file %s has no %s polygons", s.path, kind)
	}
	s.logger.Debug("boundaries loaded", "path", s.path, "kind", kind, "count", len(boundaries))
	return boundaries, nil
}
