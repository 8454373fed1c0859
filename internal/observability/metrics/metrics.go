package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification results recorded against the verification counter.
const (
	ResultVerified         = "verified"
	ResultInvalidSignature = "invalid_signature"
	ResultDuplicate        = "duplicate"
	ResultRecordingFailed  = "recording_failed"
)

// Metrics exposes application-level instruments, scraped via /metrics.
type Metrics struct {
	ordersCreated   prometheus.Counter
	orderFailures   prometheus.Counter
	verifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the storefront instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ordersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_payment_orders_created_total",
			Help: "Payment orders successfully created with the provider.",
		}),
		orderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_payment_order_failures_total",
			Help: "Order creation attempts rejected upstream.",
		}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_payment_verifications_total",
			Help: "Payment verification outcomes.",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) RecordOrderFailure() {
	if m == nil {
		return
	}
	m.orderFailures.Inc()
}

func (m *Metrics) RecordVerification(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
