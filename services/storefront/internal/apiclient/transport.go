package apiclient

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"onlinemall/internal/util"
)

// Transport wrappers observe calls without touching their semantics.
// Compose them around http.DefaultTransport and hand the result to
// Config.HTTPClient.

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func baseTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		return http.DefaultTransport
	}
	return base
}

// LoggingTransport emits one structured log per API call, carrying the
// request id so it can be correlated with backend logs.
func LoggingTransport(base http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	base = baseTransport(base)
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		log := logger
		if log == nil {
			log = util.LoggerFromContext(req.Context())
		}
		start := time.Now()
		resp, err := base.RoundTrip(req)
		attrs := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", req.Header.Get(util.RequestIDHeader),
		}
		if err != nil {
			log.Warn("api_request", append(attrs, "err", err)...)
			return nil, err
		}
		log.Debug("api_request", append(attrs, "status", resp.StatusCode)...)
		return resp, nil
	})
}

// Metrics holds Prometheus collectors for outbound API calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the API client collectors on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onlinemall",
			Subsystem: "apiclient",
			Name:      "requests_total",
			Help:      "Total number of storefront API calls",
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "onlinemall",
			Subsystem: "apiclient",
			Name:      "request_duration_seconds",
			Help:      "Storefront API call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Transport wraps base with request counting and timing.
func (m *Metrics) Transport(base http.RoundTripper) http.RoundTripper {
	base = baseTransport(base)
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := base.RoundTrip(req)
		m.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		m.requests.WithLabelValues(req.Method, status).Inc()
		return resp, err
	})
}

const tracerName = "onlinemall/apiclient"

// TracingTransport starts a client span per call and propagates the trace
// context in the request headers. It uses the global tracer provider.
func TracingTransport(base http.RoundTripper) http.RoundTripper {
	base = baseTransport(base)
	tracer := otel.Tracer(tracerName)
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		ctx, span := tracer.Start(req.Context(), "HTTP "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.path", req.URL.Path),
				attribute.String("server.address", req.URL.Host),
			),
		)
		defer span.End()

		req = req.Clone(ctx)
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := base.RoundTrip(req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		if resp.StatusCode >= 500 {
			span.SetStatus(codes.Error, resp.Status)
		}
		return resp, nil
	})
}
