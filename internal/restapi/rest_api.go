// Package restapi exposes OPTD lookups as a JSON HTTP API.
package restapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	optd "github.com/opentraveldata/optd-go"
	"github.com/opentraveldata/optd-go/internal/logging"
)

// IndexProvider hands out the OPTD index, building it on first use.
// *optd.Session implements it.
type IndexProvider interface {
	Index(ctx context.Context) (*optd.Index, error)
}

// RestAPI holds the dependencies of the HTTP handlers.
type RestAPI struct {
	Indices  IndexProvider
	Logger   *slog.Logger
	validate *validator.Validate
}

// NewRestAPI creates a RestAPI serving lookups from indices.
func NewRestAPI(indices IndexProvider, logger *slog.Logger) *RestAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestAPI{
		Indices:  indices,
		Logger:   logger,
		validate: validator.New(),
	}
}

// Routes returns the API handler with request logging.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)
	router.HandlerFunc(http.MethodGet, "/api/por/:geoid", api.porHandler)
	router.HandlerFunc(http.MethodGet, "/api/iata/:code", api.iataHandler)
	router.HandlerFunc(http.MethodGet, "/api/unlocode/:code", api.unlocodeHandler)
	router.HandlerFunc(http.MethodGet, "/api/serving/:code", api.servingHandler)
	router.HandlerFunc(http.MethodGet, "/api/nearby", api.nearbyHandler)
	router.HandlerFunc(http.MethodGet, "/api/search", api.searchHandler)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.sendNotFound(w, "")
	})
	return api.requestLogging(router)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (api *RestAPI) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		logging.LogHTTPRequest(api.Logger,
			r.Method,
			r.URL.Path,
			wrapped.statusCode,
			float64(time.Since(start).Nanoseconds())/1e6,
			slog.String("component", "http_server"))
	})
}
