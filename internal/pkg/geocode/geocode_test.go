package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseGeocode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"display_name":"MG Road, Pune, Maharashtra, India"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil)
	addr, err := c.ReverseGeocode(context.Background(), 18.52, 73.85)
	require.NoError(t, err)
	assert.Equal(t, "MG Road, Pune, Maharashtra, India", addr)
}

func TestReverseGeocodeNoResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Nominatim answers 200 with an error body for open ocean etc.
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil)
	addr, err := c.ReverseGeocode(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestReverseGeocodeServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil)
	_, err := c.ReverseGeocode(context.Background(), 18.52, 73.85)
	assert.Error(t, err)
}

func TestReverseGeocodeMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil)
	_, err := c.ReverseGeocode(context.Background(), 18.52, 73.85)
	assert.Error(t, err)
}

func TestReverseGeocodeTimeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, 100*time.Millisecond, nil)
	start := time.Now()
	_, err := c.ReverseGeocode(context.Background(), 18.52, 73.85)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "timeout must bound the wait")
}

// fakeCache is a map-backed Cache for tests.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func (f *fakeCache) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func (f *fakeCache) Set(key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	f.sets++
	return nil
}

func TestReverseGeocodeUsesCache(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"display_name":"FC Road, Pune, India"}`))
	}))
	defer srv.Close()

	cache := &fakeCache{data: map[string]string{}}
	c := NewClient(srv.URL, 2*time.Second, cache)

	for i := 0; i < 3; i++ {
		addr, err := c.ReverseGeocode(context.Background(), 18.5201, 73.8501)
		require.NoError(t, err)
		assert.Equal(t, "FC Road, Pune, India", addr)
	}

	assert.Equal(t, 1, hits, "nearby lookups should be served from cache")
	assert.Equal(t, 1, cache.sets)
}
