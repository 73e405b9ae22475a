package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being served",
		},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_analyses_total",
			Help: "Label analyses by result source and fallback reason",
		},
		[]string{"source", "reason"},
	)

	OCRImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_images_total",
			Help: "Label images processed by OCR",
		},
		[]string{"result"},
	)
)

// RecordAnalysis counts one engine outcome.
func RecordAnalysis(o analysis.Outcome) {
	AnalysesTotal.WithLabelValues(string(o.Source), o.Reason()).Inc()
}

// RecordOCR counts processed images; ok=false for failed extractions.
func RecordOCR(images int, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	OCRImagesTotal.WithLabelValues(result).Add(float64(images))
}

// Metrics tracks request metrics, labelled by chi route pattern
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RequestsInProgress.Inc()
		defer RequestsInProgress.Dec()

		start := time.Now()
		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler exposes the default registry in Prometheus text format
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
