package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/AmeyBarve/CivicTrack/internal/pkg/env"
)

const (
	// DefaultBaseURL is the public Nominatim API endpoint
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// UserAgent is required by Nominatim usage policy
	UserAgent = "CivicTrack/1.0 (https://github.com/AmeyBarve/CivicTrack)"
	// Rate limit: 1 request per second for Nominatim
	minRequestInterval = time.Second
	// cacheTTL is how long cached addresses are valid
	cacheTTL = 30 * 24 * time.Hour
)

// Cache is the subset of the cache client the geocoder needs. A nil Cache
// disables caching.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

// Client resolves coordinates to display addresses via Nominatim, with rate
// limiting and an optional cache in front of the external call.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	cache         Cache
	lastRequest   time.Time
	rateLimitLock sync.Mutex
}

// NewClient creates a geocoding client against the given base URL. A timeout
// of zero falls back to 10 seconds; a hung external call must never block a
// submission indefinitely.
func NewClient(baseURL string, timeout time.Duration, cache Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      cache,
	}
}

// NewClientFromEnv builds a client from GEOCODE_BASE_URL and
// GEOCODE_TIMEOUT_SECONDS.
func NewClientFromEnv(cache Cache) *Client {
	timeout := 10 * time.Second
	if raw := env.GetEnv("GEOCODE_TIMEOUT_SECONDS", ""); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return NewClient(env.GetEnv("GEOCODE_BASE_URL", DefaultBaseURL), timeout, cache)
}

// nominatimResponse is the part of the Nominatim reverse response we consume.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// enforceRateLimit ensures we don't exceed Nominatim's rate limit
func (c *Client) enforceRateLimit() {
	c.rateLimitLock.Lock()
	defer c.rateLimitLock.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < minRequestInterval {
		time.Sleep(minRequestInterval - elapsed)
	}
	c.lastRequest = time.Now()
}

// cacheKey buckets coordinates to roughly a city block (3 decimal places is
// about 110m), so nearby reports share one lookup.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:%.3f:%.3f", lat, lon)
}

// ReverseGeocode resolves latitude/longitude to a human-readable display
// address. It returns "" with a nil error when the service has no usable
// result for the location; any transport or decoding failure is returned as
// an error for the caller to absorb.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	key := cacheKey(lat, lon)
	if c.cache != nil {
		if cached, err := c.cache.Get(key); err == nil {
			return cached, nil
		}
	}

	c.enforceRateLimit()

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("format", "jsonv2")

	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, string(body))
	}

	var nomResp nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&nomResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// Nominatim reports "Unable to geocode" as a 200 with an error field.
	if nomResp.Error != "" || nomResp.DisplayName == "" {
		return "", nil
	}

	if c.cache != nil {
		if err := c.cache.Set(key, nomResp.DisplayName, cacheTTL); err != nil {
			fiberlog.Warnf("[Geocode] failed to cache address for %s: %v", key, err)
		}
	}

	return nomResp.DisplayName, nil
}
