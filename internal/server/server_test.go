package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bigfamingjia/ai-fortune-teller/internal/calexport"
	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const chartQuery = "/api/v1/chart?date=1996-01-25&time=10:30&lon=116.40&tz=%2B08:00&gender=m"

func newTestServer(t *testing.T) *ChartServer {
	t.Helper()
	cities, err := config.LoadCities("")
	require.NoError(t, err)
	srv, err := NewChartServer("0", cities)
	require.NoError(t, err)
	srv.Exporter = &calexport.Exporter{Clock: calexport.FixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))}
	return srv
}

func do(t *testing.T, h http.Handler, method, target string, header http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func TestChart_ServesJSON(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Routes()

	resp := do(t, h, http.MethodGet, chartQuery, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	var bundle map[string]any
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &bundle))
	assert.Contains(t, bundle, "bazi")
	assert.Equal(t, 1, srv.cache.len())
}

func TestChart_NotModified(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Routes()

	first := do(t, h, http.MethodGet, chartQuery, nil)
	etag := first.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	second := do(t, h, http.MethodGet, chartQuery, http.Header{config.HeaderIfNoneMatch: {etag}})
	assert.Equal(t, http.StatusNotModified, second.StatusCode)
	assert.Empty(t, readBody(t, second))
}

func TestChart_CacheSkipsCompute(t *testing.T) {
	srv := newTestServer(t)
	calls := 0
	srv.Compute = func(req domain.BirthRequest) (engine.ChartBundle, error) {
		calls++
		return engine.ComputeChart(req)
	}
	h := srv.Routes()

	for range 3 {
		resp := do(t, h, http.MethodGet, chartQuery, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 1, calls)
}

func TestChart_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		compute func(domain.BirthRequest) (engine.ChartBundle, error)
		status  int
		kind    string
	}{
		{"BadDate", "/api/v1/chart?date=1996-13-40&lon=116", nil, http.StatusBadRequest, config.OutcomeInvalid},
		{"NoPlace", "/api/v1/chart?date=1996-01-25", nil, http.StatusBadRequest, config.OutcomeInvalid},
		{"UnknownCity", "/api/v1/chart?date=1996-01-25&city=atlantis", nil, http.StatusBadRequest, config.OutcomeInvalid},
		{"BadBool", "/api/v1/chart?date=1996-01-25&lon=116&qimen=maybe", nil, http.StatusBadRequest, config.OutcomeInvalid},
		{"Longitude", "/api/v1/chart?date=1996-01-25&lon=181", nil, http.StatusBadRequest, config.OutcomeInvalid},
		{"OutOfRange", "/api/v1/chart?date=1850-06-01&lon=116", nil, http.StatusUnprocessableEntity, config.OutcomeRange},
		{
			"TableMiss", "/api/v1/chart?date=1996-01-25&lon=116",
			func(domain.BirthRequest) (engine.ChartBundle, error) {
				return engine.ChartBundle{}, domain.Missing("nayin", 61)
			},
			http.StatusInternalServerError, config.OutcomeComputation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			if tt.compute != nil {
				srv.Compute = tt.compute
			}
			resp := do(t, srv.Routes(), http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

			var body errorBody
			require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestChart_InternalErrorHidesDetail(t *testing.T) {
	srv := newTestServer(t)
	srv.Compute = func(domain.BirthRequest) (engine.ChartBundle, error) {
		return engine.ChartBundle{}, domain.Missing("secret_table", 7)
	}
	resp := do(t, srv.Routes(), http.MethodGet, "/api/v1/chart?date=1996-01-25&lon=116", nil)
	body := readBody(t, resp)
	assert.NotContains(t, body, "secret_table")
	assert.Contains(t, body, config.HTTPMsgInternalErr)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp := do(t, srv.Routes(), method, chartQuery, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, method)
		assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
	}
}

func TestHead_NoBody(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv.Routes(), http.MethodHead, "/api/v1/cities", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	assert.Empty(t, readBody(t, resp))
}

func TestCities(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv.Routes(), http.MethodGet, "/api/v1/cities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cities []config.City
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &cities))
	assert.Len(t, cities, 14)
	assert.Equal(t, "北京", cities[0].Name)
}

func TestTerms(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Routes()

	resp := do(t, h, http.MethodGet, "/api/v1/terms/2024", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.CacheControlPrivate, resp.Header.Get(config.HeaderCacheControl))
	assert.Equal(t, 24, strings.Count(readBody(t, resp), "BEGIN:VEVENT"))

	again := do(t, h, http.MethodGet, "/api/v1/terms/2024", nil)
	assert.Equal(t, resp.Header.Get(config.HeaderETag), again.Header.Get(config.HeaderETag))
}

func TestTerms_Errors(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Routes()

	resp := do(t, h, http.MethodGet, "/api/v1/terms/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, h, http.MethodGet, "/api/v1/terms/1850", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv.Routes(), http.MethodGet, config.RouteHealth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.HTTPMsgOK, readBody(t, resp))
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)
	a := do(t, srv.Routes(), http.MethodGet, config.RouteHealth, nil).Header.Get(config.HeaderRequestID)
	b := do(t, srv.Routes(), http.MethodGet, config.RouteHealth, nil).Header.Get(config.HeaderRequestID)

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Routes()

	do(t, h, http.MethodGet, chartQuery, nil)
	do(t, h, http.MethodGet, chartQuery, nil)
	do(t, h, http.MethodGet, "/api/v1/chart?date=bad&lon=1", nil)

	body := readBody(t, do(t, h, http.MethodGet, config.RouteMetrics, nil))
	assert.Contains(t, body, "fortune_http_requests_total")
	assert.Contains(t, body, `route="/api/v1/chart"`)
	assert.Contains(t, body, `code="400"`)
	assert.Contains(t, body, `fortune_charts_computed_total{outcome="ok"} 1`)
	assert.Contains(t, body, "fortune_chart_cache_hits_total 1")
	assert.Contains(t, body, "fortune_chart_duration_seconds_count 1")
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		port    string
		wantErr string
	}{
		{"18080", ""},
		{"", config.ErrPortRequired},
		{"http", config.ErrPortNumber},
		{"0", config.ErrPortRange},
		{"70000", config.ErrPortRange},
	}
	for _, tt := range tests {
		err := ValidatePort(tt.port)
		if tt.wantErr == "" {
			assert.NoError(t, err, tt.port)
			continue
		}
		require.Error(t, err, tt.port)
		assert.Contains(t, err.Error(), tt.wantErr)
	}
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition hammers the copy-on-write cache with distinct
// and repeated keys. Run with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer(t)
	srv.cache = newResponseCache(4)
	h := srv.Routes()

	years := []string{"2020", "2021", "2022", "2023", "2024", "2025"}
	var wg sync.WaitGroup
	for i := range 12 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 10 {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/terms/"+years[(i+j)%len(years)], nil)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				if w.Code != http.StatusOK {
					t.Errorf("unexpected status during race test: %d", w.Code)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, srv.cache.len(), 4)
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle binds a real listener and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := newTestServer(t)
	srv.Port = port
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	url := "http://127.0.0.1:" + port

	require.Eventually(t, func() bool {
		resp, err := client.Get(url + config.RouteHealth)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 50*time.Millisecond, "server failed to listen in time")

	resp, err := client.Get(url + chartQuery)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "server should shut down gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("server shutdown timed out")
	}
}

func TestServer_StartRejectsBadPort(t *testing.T) {
	srv := newTestServer(t)
	srv.Port = "abc"
	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortNumber)
}
