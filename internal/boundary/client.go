// Package boundary provides administrative boundary polygons for the deck
// build: a fetch client for the remote boundary provider, an LRU cache
// decorator, and a local GeoJSON file source for offline builds.
package boundary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/couchcryptid/crash-map-deck/internal/observability"
)

// Client implements domain.BoundarySource against the boundary provider's
// GeoJSON endpoints.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a boundary provider client. The token is optional; public
// mirrors serve the cartographic boundary files without one.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Boundaries fetches the boundary set for the given administrative kind.
func (c *Client) Boundaries(ctx context.Context, kind domain.BoundaryKind) ([]domain.BoundaryPolygon, error) {
	u := fmt.Sprintf("%s/%s.geojson", c.baseURL, url.PathEscape(string(kind)))
	if c.token != "" {
		params := url.Values{"access_token": {c.token}}
		u += "?" + params.Encode()
	}

	start := time.Now()
	data, err := c.fetch(ctx, u)
	if err != nil {
		c.metrics.BoundaryFetches.WithLabelValues(string(kind), "error").Inc()
		return nil, err
	}

	boundaries, err := decodeFeatureCollection(data, kind)
	if err != nil {
		c.metrics.BoundaryFetches.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("decode %s boundaries: %w", kind, err)
	}

	if len(boundaries) == 0 {
		c.metrics.BoundaryFetches.WithLabelValues(string(kind), "empty").Inc()
		return nil, fmt.Errorf("boundary provider returned no %s polygons", kind)
	}

	c.metrics.BoundaryFetches.WithLabelValues(string(kind), "success").Inc()
	c.logger.Debug("boundaries fetched",
		"kind", kind,
		"count", len(boundaries),
		"duration", time.Since(start),
	)
	return boundaries, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("boundary provider error: status %d: %s", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}
