package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazyhaar/contact-normalizer/pkg/kit"
)

// Metrics records endpoint traffic and contact throughput.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	contacts *prometheus.CounterVec
}

// register adds c to reg. If an identical collector is already registered
// (a second router in the same process), that one is reused.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// NewMetrics creates and registers the collectors on reg.
//
// Metrics registered:
//   - contactnorm_endpoint_calls_total{endpoint, transport, result}
//   - contactnorm_endpoint_duration_seconds{endpoint}
//   - contactnorm_contacts_total{stage} - contacts mapped, imported, normalized, exported
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("prometheus registerer is nil")
	}
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactnorm",
			Name:      "endpoint_calls_total",
			Help:      "Endpoint calls by transport and result.",
		}, []string{"endpoint", "transport", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contactnorm",
			Name:      "endpoint_duration_seconds",
			Help:      "Endpoint latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactnorm",
			Name:      "contacts_total",
			Help:      "Contacts processed by stage.",
		}, []string{"stage"}),
	}
	var err error
	if m.calls, err = register(reg, m.calls); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.contacts, err = register(reg, m.contacts); err != nil {
		return nil, err
	}
	return m, nil
}

// Middleware counts calls and observes latency for the named endpoint.
func (m *Metrics) Middleware(name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, request)
			result := "ok"
			if err != nil {
				result = "error"
			}
			m.calls.WithLabelValues(name, kit.GetTransport(ctx), result).Inc()
			m.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

func (m *Metrics) observeContacts(stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.contacts.WithLabelValues(stage).Add(float64(n))
}
