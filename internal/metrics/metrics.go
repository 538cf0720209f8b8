package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics groups the service's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	RegistrationsTotal         *prometheus.CounterVec
	LoginsTotal                *prometheus.CounterVec
	VerificationsTotal         *prometheus.CounterVec
	NotificationsTotal         *prometheus.CounterVec
}

// New creates the collectors curried with serviceName and registers them on reg.
func New(reg prometheus.Registerer, serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"service", "method", "path", "status"},
		).MustCurryWith(labels),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		).MustCurryWith(labels).(*prometheus.HistogramVec),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_registrations_total",
				Help: "Total number of registration attempts.",
			},
			[]string{"service", "kind", "result"},
		).MustCurryWith(labels),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_logins_total",
				Help: "Total number of login attempts.",
			},
			[]string{"service", "kind", "result"},
		).MustCurryWith(labels),
		VerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_otp_verifications_total",
				Help: "Total number of OTP verification attempts.",
			},
			[]string{"service", "kind", "result"},
		).MustCurryWith(labels),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Total number of outbound notifications by template.",
			},
			[]string{"service", "template", "result"},
		).MustCurryWith(labels),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.RegistrationsTotal,
		m.LoginsTotal,
		m.VerificationsTotal,
		m.NotificationsTotal,
	)
	return m
}

// Result converts an operation error into a result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

func (m *Metrics) ObserveRegistration(kind string, err error) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(kind, Result(err)).Inc()
}

func (m *Metrics) ObserveLogin(kind string, err error) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(kind, Result(err)).Inc()
}

func (m *Metrics) ObserveVerification(kind string, err error) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(kind, Result(err)).Inc()
}

func (m *Metrics) ObserveNotification(template string, err error) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(template, Result(err)).Inc()
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil || c.Path() == "/metrics" {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < 400 {
					status = 500
				}
			}

			method := c.Request().Method
			path := c.Path()
			m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDurationSeconds.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
