package boundary

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/couchcryptid/crash-map-deck/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "bt.test-token"

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     discardLogger(),
	}
}

func sampleGeoJSON(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/states_sample.geojson")
	require.NoError(t, err)
	return data
}

func TestClient_Boundaries_Success(t *testing.T) {
	sample := sampleGeoJSON(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/states.geojson", r.URL.Path)
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(sample)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	boundaries, err := c.Boundaries(context.Background(), domain.BoundaryStates)
	require.NoError(t, err)

	require.Len(t, boundaries, 2, "non-polygon features are skipped")
	assert.Equal(t, "48", boundaries[0].ID)
	assert.Equal(t, "Texas", boundaries[0].Name)
	assert.Equal(t, 29_000_000, boundaries[0].Population)
	assert.Equal(t, domain.BoundaryStates, boundaries[0].Kind)
	require.Len(t, boundaries[0].Geometry, 1)

	assert.Equal(t, "40", boundaries[1].ID, "GEOID property is used when the feature has no id")
	assert.Equal(t, "Oklahoma", boundaries[1].Name)
	assert.Zero(t, boundaries[1].Population)
}

func TestClient_Boundaries_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("access_token"))
		_, _ = w.Write(sampleGeoJSON(t))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.token = ""
	_, err := c.Boundaries(context.Background(), domain.BoundaryStates)
	require.NoError(t, err)
}

func TestClient_Boundaries_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Boundaries(context.Background(), domain.BoundaryCounties)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestClient_Boundaries_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not-geojson{{{"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Boundaries(context.Background(), domain.BoundaryStates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode states boundaries")
}

func TestClient_Boundaries_EmptyCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Boundaries(context.Background(), domain.BoundaryStates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no states polygons")
}

func TestClient_Boundaries_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL)
	_, err := c.Boundaries(ctx, domain.BoundaryStates)
	require.Error(t, err)
}
