package observability

import (
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware returns an HTTP middleware for hosts that read filters from
// requests. It traces requests with otelhttp when a tracer provider is
// configured and attaches a Server-Timing header when server timing is
// enabled.
func HTTPMiddleware(cfg *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := next
		if cfg.ServerTimingEnabled() {
			h = servertiming.Middleware(h, nil)
		}
		if cfg != nil && cfg.TracerProvider != nil {
			h = otelhttp.NewHandler(h, "filter.http",
				otelhttp.WithTracerProvider(cfg.TracerProvider),
				otelhttp.WithMeterProvider(cfg.MeterProvider),
			)
		}
		return h
	}
}
