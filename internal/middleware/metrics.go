package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/splitledger/pkg/api"
)

// Metrics holds the Prometheus collectors for RPC traffic and split outcomes.
// A nil *Metrics records nothing.
type Metrics struct {
	rpcs    *prometheus.CounterVec
	latency *prometheus.HistogramVec
	splits  *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		rpcs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by service, method and result code.",
		}, []string{"service", "method", "code"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method"}),
		splits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "splits_computed_total",
			Help:      "Splits computed, by strategy kind and validation status.",
		}, []string{"kind", "status"}),
	}
}

// Interceptor counts and times every RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if m == nil {
				return next(ctx, req)
			}
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			service, method := api.ServiceOf(procedure), api.MethodOf(procedure)
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.rpcs.WithLabelValues(service, method, code).Inc()
			m.latency.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

// ObserveSplit records one computed split.
func (m *Metrics) ObserveSplit(kind, status string) {
	if m == nil {
		return
	}
	m.splits.WithLabelValues(kind, status).Inc()
}
