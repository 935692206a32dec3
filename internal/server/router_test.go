package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfeed/aggregator/internal/metrics"
	"github.com/skyfeed/aggregator/internal/model"
	"github.com/skyfeed/aggregator/internal/service"
	"github.com/skyfeed/aggregator/internal/upstream"
)

const testKey = "secret123"

// fakeUpstreams serves canned responses for every third-party API and counts hits.
type fakeUpstreams struct {
	srv  *httptest.Server
	hits atomic.Int64
}

func newFakeUpstreams(t *testing.T, handler http.HandlerFunc) *fakeUpstreams {
	t.Helper()

	f := &fakeUpstreams{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUpstreams) endpoints() upstream.Endpoints {
	return upstream.Endpoints{
		ISS:     f.srv.URL + "/iss-now.json",
		SpaceX:  f.srv.URL + "/v5/launches/latest",
		CatFact: f.srv.URL + "/fact",
		FX:      f.srv.URL + "/latest",
	}
}

func healthyUpstreamHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/iss-now.json":
		_, _ = io.WriteString(w, `{"message":"success","timestamp":1718000000,"iss_position":{"latitude":"48.8566","longitude":"2.3522"}}`)
	case "/v5/launches/latest":
		_, _ = io.WriteString(w, `{"name":"Starlink 6-1","date_utc":"2023-02-27T23:13:00.000Z","success":true}`)
	case "/fact":
		_, _ = io.WriteString(w, `{"fact":"Cats can rotate their ears 180 degrees.","length":38}`)
	case "/latest":
		_, _ = io.WriteString(w, `{"amount":1.0,"base":"EUR","rates":{"USD":1.0923}}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestRouter(t *testing.T, up *fakeUpstreams, timeout time.Duration) (http.Handler, *metrics.InMemoryRecorder) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory(model.Sources...)
	client := upstream.NewClient(upstream.NewHTTPClient(timeout), up.endpoints())

	return NewRouter(RouterConfig{
		Logger:        logger,
		APIKey:        testKey,
		IsDevelopment: true,
		Aggregator:    service.NewAggregator(client, logger, recorder),
		Metrics:       recorder,
		Snapshotter:   recorder,
	}), recorder
}

func doGet(t *testing.T, h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AggregateHealthy(t *testing.T) {
	t.Parallel()

	up := newFakeUpstreams(t, healthyUpstreamHandler)
	router, _ := newTestRouter(t, up, 2*time.Second)

	rec := doGet(t, router, "/v1/aggregate", map[string]string{"X-API-Key": testKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	dec := json.NewDecoder(rec.Body)
	dec.DisallowUnknownFields()

	var got model.AggregateResult
	require.NoError(t, dec.Decode(&got))

	assert.Equal(t, model.ISSPosition{Lat: 48.8566, Lon: 2.3522, Timestamp: 1718000000}, got.ISS)
	assert.Equal(t, "Starlink 6-1", got.SpaceX.Name)
	assert.Equal(t, "2023-02-27T23:13:00.000Z", got.SpaceX.DateUTC)
	require.NotNil(t, got.SpaceX.Success)
	assert.True(t, *got.SpaceX.Success)
	assert.Equal(t, "Cats can rotate their ears 180 degrees.", got.CatFact)
	assert.InDelta(t, 1.0923, got.EURUSD, 1e-9)
	assert.Equal(t, int64(4), up.hits.Load())
}

func TestRouter_AggregateUpstreamsDown(t *testing.T) {
	t.Parallel()

	up := newFakeUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	router, recorder := newTestRouter(t, up, 2*time.Second)

	rec := doGet(t, router, "/v1/aggregate", map[string]string{"X-API-Key": testKey})
	require.Equal(t, http.StatusOK, rec.Code)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &top))
	assert.Len(t, top, 4)
	for _, k := range []string{"iss", "spacex", "cat_fact", "eur_usd"} {
		assert.Contains(t, top, k)
	}

	var got model.AggregateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.DefaultAggregateResult(), got)

	for _, u := range recorder.Snapshot().Upstreams {
		assert.Equal(t, uint64(1), u.Defaulted, u.Source)
	}
}

func TestRouter_AggregateUpstreamTimeout(t *testing.T) {
	t.Parallel()

	up := newFakeUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fact" {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		healthyUpstreamHandler(w, r)
	})
	router, _ := newTestRouter(t, up, 100*time.Millisecond)

	rec := doGet(t, router, "/v1/aggregate", map[string]string{"X-API-Key": testKey})
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.AggregateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.DefaultCatFact, got.CatFact)
	assert.Equal(t, "Starlink 6-1", got.SpaceX.Name)
	assert.InDelta(t, 1.0923, got.EURUSD, 1e-9)
}

func TestRouter_AggregateRejectsBadKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing key", nil},
		{"wrong key", map[string]string{"X-API-Key": "wrong"}},
		{"wrong case", map[string]string{"X-API-Key": "SECRET123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			up := newFakeUpstreams(t, healthyUpstreamHandler)
			router, recorder := newTestRouter(t, up, 2*time.Second)

			rec := doGet(t, router, "/v1/aggregate", tt.headers)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"detail":"Invalid or missing API key"}`, rec.Body.String())
			assert.Equal(t, int64(0), up.hits.Load(), "no upstream call may happen before auth")

			snap := recorder.Snapshot()
			assert.Equal(t, uint64(1), snap.AuthFailures)
			assert.Equal(t, uint64(0), snap.AggregateRequests)
		})
	}
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	up := newFakeUpstreams(t, healthyUpstreamHandler)
	router, _ := newTestRouter(t, up, time.Second)

	// No key needed.
	rec := doGet(t, router, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, int64(0), up.hits.Load())
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	up := newFakeUpstreams(t, healthyUpstreamHandler)
	router, _ := newTestRouter(t, up, time.Second)

	doGet(t, router, "/v1/aggregate", map[string]string{"X-API-Key": testKey})

	rec := doGet(t, router, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aggregator_requests_total 1\n")
	assert.Contains(t, rec.Body.String(), `aggregator_upstream_fetches_total{source="iss",outcome="success"} 1`)
}

func TestRouter_MetricsDisabled(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		APIKey:     testKey,
		Aggregator: nil,
	})

	rec := doGet(t, router, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	up := newFakeUpstreams(t, healthyUpstreamHandler)
	router, _ := newTestRouter(t, up, time.Second)

	rec := doGet(t, router, "/v2/aggregate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/health", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	t.Parallel()

	up := newFakeUpstreams(t, healthyUpstreamHandler)
	router, _ := newTestRouter(t, up, time.Second)

	rec := doGet(t, router, "/health", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
