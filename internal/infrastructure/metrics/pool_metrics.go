package metrics

import (
	"net/http"

	portsout "addrpool/internal/application/ports/out"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "addrpool"

// PoolMetrics exports pool activity on a private registry so tests and
// multiple instances never collide on the global one.
type PoolMetrics struct {
	registry      *prometheus.Registry
	accesses      *prometheus.CounterVec
	rotations     prometheus.Counter
	replaced      prometheus.Histogram
	oracleQueries *prometheus.CounterVec
	minted        prometheus.Counter
	storeFailures *prometheus.CounterVec
}

var _ portsout.PoolMetrics = (*PoolMetrics)(nil)

func NewPoolMetrics() *PoolMetrics {
	m := &PoolMetrics{
		registry: prometheus.NewRegistry(),
		accesses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pool_accesses_total",
				Help:      "Current address requests by outcome.",
			},
			[]string{"outcome"},
		),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_rotations_total",
			Help:      "Completed pool rotations.",
		}),
		replaced: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pool_rotation_replaced_entries",
			Help:      "Entries replaced per rotation.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		oracleQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oracle_queries_total",
				Help:      "Activity oracle queries by result.",
			},
			[]string{"result"},
		),
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "addresses_minted_total",
			Help:      "Addresses derived into the pool.",
		}),
		storeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_failures_total",
				Help:      "Pool state store failures by operation.",
			},
			[]string{"operation"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.accesses,
		m.rotations,
		m.replaced,
		m.oracleQueries,
		m.minted,
		m.storeFailures,
	)

	return m
}

func (m *PoolMetrics) ObserveAccess(outcome portsout.AccessOutcome) {
	m.accesses.WithLabelValues(string(outcome)).Inc()
}

func (m *PoolMetrics) ObserveRotation(replaced int) {
	m.rotations.Inc()
	m.replaced.Observe(float64(replaced))
}

func (m *PoolMetrics) ObserveOracleQuery(result portsout.OracleResult) {
	m.oracleQueries.WithLabelValues(string(result)).Inc()
}

func (m *PoolMetrics) ObserveMinted(count int) {
	if count <= 0 {
		return
	}
	m.minted.Add(float64(count))
}

func (m *PoolMetrics) ObserveStoreFailure(operation string) {
	m.storeFailures.WithLabelValues(operation).Inc()
}

func (m *PoolMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PoolMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
