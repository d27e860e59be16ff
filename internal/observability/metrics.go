package observability

import (
	"io"
	"net/http"
	"time"
)

// Metrics is the storefront's Prometheus text-format registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *GaugeVec
	cartOps      *CounterVec
	cartLatency  *HistogramVec
	cartSessions *GaugeVec
	breakerState *GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("printshop_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"printshop_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:  NewGaugeVec("printshop_api_inflight_requests", "In-flight API requests.", nil),
		cartOps:      NewCounterVec("printshop_cart_operations_total", "Cart store operations by op/mode/outcome.", []string{"op", "mode", "outcome"}),
		cartLatency:  NewHistogramVec("printshop_cart_operation_duration_seconds", "Cart store operation latency by op/mode.", []string{"op", "mode"}, nil),
		cartSessions: NewGaugeVec("printshop_cart_sessions", "Live cart sessions.", nil),
		breakerState: NewGaugeVec("printshop_cart_breaker_state", "Remote cart breaker state (0 closed, 1 half-open, 2 open).", []string{"name"}),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightAdd(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

// ObserveCartOp records one cart store operation. outcome is "ok" or the
// cart error kind.
func (m *Metrics) ObserveCartOp(op, mode, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.cartOps.Inc(op, mode, outcome)
	m.cartLatency.Observe(dur.Seconds(), op, mode)
}

func (m *Metrics) SetCartSessions(n int) {
	if m == nil {
		return
	}
	m.cartSessions.Set(float64(n))
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.breakerState.Set(float64(state), name)
}

func (m *Metrics) CartOpCount(op, mode, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.cartOps.Value(op, mode, outcome)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.cartOps, m.cartLatency, m.cartSessions, m.breakerState,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
