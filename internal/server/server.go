// Package server exposes charts over a local read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigfamingjia/ai-fortune-teller/internal/calexport"
	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/engine"
)

// Cache key prefixes keep chart and term responses apart.
const (
	keyChart = "chart:"
	keyTerms = "terms:"
)

// ChartServer serves chart bundles, the city table and solar-term feeds.
type ChartServer struct {
	Port   string
	Cities *config.CityTable
	// Compute is the chart pipeline; tests replace it.
	Compute  func(domain.BirthRequest) (engine.ChartBundle, error)
	Exporter *calexport.Exporter

	cache    *responseCache
	registry *prometheus.Registry
	metrics  *metrics
}

// NewChartServer creates a server with its own metrics registry.
func NewChartServer(port string, cities *config.CityTable) (*ChartServer, error) {
	reg := prometheus.NewRegistry()
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	return &ChartServer{
		Port:     port,
		Cities:   cities,
		Compute:  engine.ComputeChart,
		Exporter: &calexport.Exporter{Clock: calexport.RealClock{}},
		cache:    newResponseCache(config.MaxCachedCharts),
		registry: reg,
		metrics:  m,
	}, nil
}

// Routes builds the chi router.
func (s *ChartServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID, s.instrument, readOnly)

	get := func(pattern string, h http.HandlerFunc) {
		r.Get(pattern, h)
		r.Head(pattern, h)
	}
	get(config.RouteHealth, handleHealth)
	r.Method(http.MethodGet, config.RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route(config.RouteAPI, func(api chi.Router) {
		api.Get(config.RouteChart, s.handleChart)
		api.Head(config.RouteChart, s.handleChart)
		api.Get(config.RouteCities, s.handleCities)
		api.Head(config.RouteCities, s.handleCities)
		api.Get(config.RouteTerms, s.handleTerms)
		api.Head(config.RouteTerms, s.handleTerms)
	})
	return r
}

// Start listens on localhost and blocks until ctx is cancelled.
func (s *ChartServer) Start(ctx context.Context) error {
	if err := ValidatePort(s.Port); err != nil {
		return err
	}

	// 1. Server Configuration
	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Routes(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	// 2. Listen in the Background
	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	// 3. Wait for Cancellation or a Startup Failure
	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// ValidatePort checks a TCP port string.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(config.ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %q", config.ErrPortNumber, port)
	}
	if n < config.MinPort || n > config.MaxPort {
		return fmt.Errorf("%s: %d", config.ErrPortRange, n)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
	_, _ = w.Write([]byte(config.HTTPMsgOK))
}

// handleChart answers GET /api/v1/chart with a JSON chart bundle.
func (s *ChartServer) handleChart(w http.ResponseWriter, r *http.Request) {
	// 1. Query to Request
	in, err := inputFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := in.Request(s.Cities)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// 2. Cache Lookup by Resolved Request
	canonical, err := json.Marshal(req)
	if err != nil {
		writeError(w, r, fmt.Errorf("%s: %w", config.ErrEncodeJSON, err))
		return
	}
	key := cacheKey(keyChart, canonical)
	if item, ok := s.cache.get(key); ok {
		s.metrics.cacheHits.Inc()
		serve(w, r, item, config.CacheControlPublic)
		return
	}

	// 3. Compute
	start := time.Now()
	bundle, err := s.Compute(req)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.charts.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		slog.Warn(config.MsgChartFailed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, w.Header().Get(config.HeaderRequestID),
			config.LogKeyError, err,
		)
		writeError(w, r, err)
		return
	}

	// 4. Encode, Cache and Serve
	data, err := json.Marshal(bundle)
	if err != nil {
		writeError(w, r, fmt.Errorf("%s: %w", config.ErrEncodeJSON, err))
		return
	}
	item := newItem(data, config.MimeJSON)
	s.cache.put(key, item)
	serve(w, r, item, config.CacheControlPublic)
}

// handleCities lists the city table in its file order.
func (s *ChartServer) handleCities(w http.ResponseWriter, r *http.Request) {
	var cities []config.City
	if s.Cities != nil {
		cities = s.Cities.All()
	}
	data, err := json.Marshal(cities)
	if err != nil {
		writeError(w, r, fmt.Errorf("%s: %w", config.ErrEncodeJSON, err))
		return
	}
	serve(w, r, newItem(data, config.MimeJSON), config.CacheControlPublic)
}

// handleTerms serves the year's solar terms as an iCalendar feed. Feeds are
// cached per year.
func (s *ChartServer) handleTerms(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, config.ParamYear)
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, domain.Invalid(config.ParamYear, raw, config.ErrYearParse))
		return
	}

	key := keyTerms + strconv.Itoa(year)
	if item, ok := s.cache.get(key); ok {
		s.metrics.cacheHits.Inc()
		serve(w, r, item, config.CacheControlPrivate)
		return
	}

	data, err := s.Exporter.Terms(year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item := newItem(data, config.MimeTextCalendar)
	s.cache.put(key, item)
	serve(w, r, item, config.CacheControlPrivate)
}

// serve writes an item with its validator, answering 304 when the client
// already holds it.
func serve(w http.ResponseWriter, r *http.Request, item *cacheItem, cacheControl string) {
	w.Header().Set(config.HeaderContentType, item.mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, cacheControl)
	w.Header().Set(config.HeaderETag, item.etag)

	// Conditional request: the client already holds this body.
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(item.data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// errorBody is the JSON shape of every non-2xx answer.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps the typed domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusOf(err)
	msg := err.Error()
	// Internal failures are logged, not echoed.
	if status == http.StatusInternalServerError {
		msg = config.HTTPMsgInternalErr
	}
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg, Kind: kind})
}

// statusOf classifies err into a status code and the outcome label used by metrics.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, config.OutcomeInvalid
	case errors.Is(err, domain.ErrUnsupportedRange):
		return http.StatusUnprocessableEntity, config.OutcomeRange
	default:
		return http.StatusInternalServerError, config.OutcomeComputation
	}
}

func outcome(err error) string {
	if err == nil {
		return config.OutcomeOK
	}
	_, kind := statusOf(err)
	return kind
}

// inputFromQuery reads the chart parameters. Boolean flags accept anything
// strconv.ParseBool does; an absent flag is false.
func inputFromQuery(r *http.Request) (engine.Input, error) {
	q := r.URL.Query()
	in := engine.Input{
		Date:   q.Get(config.QueryDate),
		Time:   q.Get(config.QueryTime),
		TZ:     q.Get(config.QueryTZ),
		Lon:    q.Get(config.QueryLon),
		City:   q.Get(config.QueryCity),
		Gender: q.Get(config.QueryGender),
		Method: q.Get(config.QueryMethod),
	}
	flags := []struct {
		name string
		dst  *bool
	}{
		{config.QueryQimen, &in.Qimen},
		{config.QueryEoT, &in.EoT},
		{config.QueryZiHour, &in.ZiHour},
	}
	for _, f := range flags {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return in, domain.Invalid(f.name, raw, config.ErrBoolParse)
		}
		*f.dst = v
	}
	return in, nil
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

// requestID tags every response with a fresh UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HeaderRequestID, uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

// readOnly rejects every method but GET and HEAD.
func readOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument counts requests by route pattern and status.
func (s *ChartServer) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		// Label by route pattern so path parameters do not explode the series.
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		slog.Debug(config.MsgRequestServed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, ww.Header().Get(config.HeaderRequestID),
			config.LogKeyMethod, r.Method,
			config.LogKeyRoute, route,
			config.LogKeyStatus, status,
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	})
}
