package filters

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/nlstn/go-filters/internal/observability"
)

// DefaultQueryParameter is the query parameter ParseRequest reads when none
// is given.
const DefaultQueryParameter = "filter"

// ParseRequest parses the filter carried in the param query parameter of r.
// An empty param reads DefaultQueryParameter. A request without the
// parameter, or with an empty one, yields a nil filter and no error.
func ParseRequest(r *http.Request, p *Parser, param string) (*Filter, error) {
	if param == "" {
		param = DefaultQueryParameter
	}
	input := r.URL.Query().Get(param)
	if input == "" {
		return nil, nil
	}

	metric := observability.StartServerTiming(r.Context(), "filter.parse")
	defer metric.Stop()
	return p.ParseContext(r.Context(), input)
}

// Observability types and options.
type (
	Observability       = observability.Config
	ObservabilityOption = observability.Option
)

var (
	WithTracerProvider    = observability.WithTracerProvider
	WithMeterProvider     = observability.WithMeterProvider
	WithServiceName       = observability.WithServiceName
	WithDetailedDBTracing = observability.WithDetailedDBTracing
	WithQueryTracing      = observability.WithQueryTracing
	WithServerTiming      = observability.WithServerTiming
)

// NewObservability creates an observability configuration for parsers,
// evaluators and HTTP hosts. Without providers it records nothing.
func NewObservability(opts ...ObservabilityOption) *Observability {
	return observability.NewConfig(opts...)
}

// HTTPMiddleware wraps a handler that reads filters from requests with
// request tracing and, when enabled, a Server-Timing header.
func HTTPMiddleware(cfg *Observability) func(http.Handler) http.Handler {
	return observability.HTTPMiddleware(cfg)
}

// InstrumentDB registers GORM callbacks that trace the queries filtered
// results are read with and report them as Server-Timing metrics.
func InstrumentDB(db *gorm.DB, cfg *Observability) error {
	if err := observability.RegisterGORMCallbacks(db, cfg); err != nil {
		return err
	}
	if cfg.ServerTimingEnabled() {
		return observability.RegisterServerTimingCallbacks(db)
	}
	return nil
}
