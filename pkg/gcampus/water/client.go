package water

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Lookuper fetches the water bodies around a location.
type Lookuper interface {
	Lookup(ctx context.Context, source Source, lng, lat float64) (*geojson.FeatureCollection, error)
}

// Client queries the lookup endpoints of the gcampus API. Overpass lookups
// are rate limited since every request is forwarded to the public Overpass
// API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	geoSize    int
	osmLimiter *rate.Limiter
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithGeoSize sets the bounding box size in meters.
func WithGeoSize(size int) ClientOption {
	return func(c *Client) { c.geoSize = size }
}

// WithOverpassLimit sets the Overpass request rate.
func WithOverpassLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) { c.osmLimiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		geoSize:    DefaultGeoSize,
		osmLimiter: rate.NewLimiter(rate.Limit(1), 1),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup implements Lookuper.
func (c *Client) Lookup(ctx context.Context, source Source, lng, lat float64) (*geojson.FeatureCollection, error) {
	query, err := LookupQuerySize(source, lng, lat, c.geoSize)
	if err != nil {
		return nil, err
	}
	if source == SourceOSM {
		if err := c.osmLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u := c.baseURL + query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", source, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", source, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: decode response: %w", source, err)
	}
	c.logger.Debug("water lookup",
		zap.String("source", string(source)),
		zap.Int("features", len(fc.Features)),
		zap.Duration("took", time.Since(start)))
	return fc, nil
}
