package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "testdata/crashes_sample.json"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_JSON(t *testing.T) {
	records, err := Load(samplePath)
	require.NoError(t, err)
	require.Len(t, records, 5)

	first := records[0]
	assert.Equal(t, "150001", first.CaseID)
	assert.Equal(t, 2015, first.Year)
	assert.Equal(t, time.June, first.Month)
	assert.Equal(t, domain.SeasonSummer, first.Season)
	assert.Equal(t, 30.2672, first.Geo.Lat)

	// Row with the 77.7777 latitude sentinel comes through without coordinates.
	assert.True(t, records[3].Geo.IsZero())

	// "UNK" time falls back to midnight, three-digit time is padded.
	assert.Equal(t, 0, records[2].CrashTime.Hour())
	assert.Equal(t, 3, records[4].CrashTime.Hour())
	assert.Equal(t, 10, records[4].CrashTime.Minute())
}

func TestLoad_JSON_YearFilterSample(t *testing.T) {
	// The sample dataset carries years {2015, 2019, 2019, 2018, 2019}.
	records, err := Load(samplePath)
	require.NoError(t, err)

	filtered := domain.FilterYear(records, 2019)
	assert.Len(t, filtered, 3)
}

func TestLoad_CSV(t *testing.T) {
	records, err := Load("testdata/crashes_sample.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "NM", records[0].State)
	assert.Equal(t, domain.SeasonSummer, records[0].Season)
	assert.Equal(t, domain.SeasonSummer, records[1].Season) // October is still summer
	assert.Equal(t, 2, records[1].Fatalities)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read dataset")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load("testdata/crashes.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dataset format")
}

func TestLoad_SchemaMismatch(t *testing.T) {
	dir := t.TempDir()

	t.Run("not an array", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"DATE":"2019-01-01"}`), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("row with bad date", func(t *testing.T) {
		path := filepath.Join(dir, "baddate.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"DATE":"01/01/2019"}]`), 0o600))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 0")
	})

	t.Run("csv without DATE column", func(t *testing.T) {
		path := filepath.Join(dir, "nodate.csv")
		require.NoError(t, os.WriteFile(path, []byte("STATE,FATALS\nTX,1\n"), 0o600))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing DATE column")
	})
}

func TestFileSource_LoadRecords(t *testing.T) {
	src := NewFileSource(samplePath, discardLogger())
	records, err := src.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 5)

	src = NewFileSource("testdata/missing.json", discardLogger())
	_, err = src.LoadRecords(context.Background())
	assert.Error(t, err)
}
