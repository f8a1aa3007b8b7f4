package boundary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_Boundaries(t *testing.T) {
	src := NewFileSource("testdata/states_sample.geojson", discardLogger())

	boundaries, err := src.Boundaries(context.Background(), domain.BoundaryStates)
	require.NoError(t, err)
	require.Len(t, boundaries, 2)
	assert.Equal(t, "48", boundaries[0].ID)
	assert.Equal(t, domain.BoundaryStates, boundaries[1].Kind)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource("testdata/missing.geojson", discardLogger())

	_, err := src.Boundaries(context.Background(), domain.BoundaryStates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read boundary file")
}

func TestFileSource_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	src := NewFileSource(path, discardLogger())
	_, err := src.Boundaries(context.Background(), domain.BoundaryStates)
	require.Error(t, err)
}
