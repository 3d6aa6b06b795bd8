package http

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/logging"
)

const httpInstrumentationName = "github.com/fyrsmithlabs/crxproject/internal/http"

// HTTPMetrics records request metrics to OTEL instruments and to the
// Prometheus collectors served on /metrics.
type HTTPMetrics struct {
	meter  metric.Meter
	logger *logging.Logger

	requestDur     metric.Float64Histogram
	activeRequests metric.Int64UpDownCounter

	requestsTotal *prometheus.CounterVec
}

// NewHTTPMetrics creates the instruments. A nil meter uses the global
// provider; cachedProjects backs the cached projects gauge and may be nil.
func NewHTTPMetrics(meter metric.Meter, reg prometheus.Registerer, cachedProjects func() int, logger *logging.Logger) *HTTPMetrics {
	if logger == nil {
		logger = logging.NewNop()
	}
	if meter == nil {
		meter = otel.Meter(httpInstrumentationName)
	}

	m := &HTTPMetrics{
		meter:  meter,
		logger: logger,
	}
	m.init()

	factory := promauto.With(reg)
	m.requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "crxproject_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	if cachedProjects != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "crxproject_workspace_cached_projects",
			Help: "Projects currently held in the workspace cache.",
		}, func() float64 { return float64(cachedProjects()) })
	}
	return m
}

func (m *HTTPMetrics) init() {
	ctx := context.Background()
	var err error

	m.requestDur, err = m.meter.Float64Histogram(
		"crxproject.http.request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds, labeled by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		m.logger.Warn(ctx, "failed to create duration histogram", zap.Error(err))
	}

	m.activeRequests, err = m.meter.Int64UpDownCounter(
		"crxproject.http.active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		m.logger.Warn(ctx, "failed to create active requests gauge", zap.Error(err))
	}
}

// MetricsMiddleware returns an Echo middleware that records HTTP metrics.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := req.Context()

			if m.activeRequests != nil {
				m.activeRequests.Add(ctx, 1)
			}

			err := next(c)
			if err != nil {
				// Let echo write the response so the status is final.
				c.Error(err)
				err = nil
			}

			route := normalizeRoute(c.Path())
			status := c.Response().Status

			if m.requestDur != nil {
				m.requestDur.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
					attribute.String("method", req.Method),
					attribute.String("route", route),
					attribute.Int("status", status),
				))
			}
			if m.activeRequests != nil {
				m.activeRequests.Add(ctx, -1)
			}
			m.requestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()

			return err
		}
	}
}

// normalizeRoute keeps label cardinality bounded. Routes are fixed, so
// only unmatched requests need folding.
func normalizeRoute(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}
