package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics is the Prometheus registry for the engine's own domain
// signals: coverage health, oracle staleness, liquidation throughput, circuit
// breaker trips, and the elastic fee the coverage accountant derives.
type EngineMetrics struct {
	coverageRatio   prometheus.Gauge
	oracleStaleness *prometheus.GaugeVec
	liquidations    *prometheus.CounterVec
	breakerTrips    *prometheus.CounterVec
	elasticFeeBp    prometheus.Gauge
	intentLatency   *prometheus.HistogramVec
	quotaThrottles  *prometheus.CounterVec
}

var (
	engineMetricsOnce sync.Once
	engineRegistry    *EngineMetrics
)

// Engine returns the lazily-initialised engine metrics registry.
func Engine() *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			coverageRatio: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "predmarket",
				Subsystem: "coverage",
				Name:      "ratio",
				Help:      "Current vault coverage ratio (vault balance over tail-loss-weighted total open interest).",
			}),
			oracleStaleness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "predmarket",
				Subsystem: "oracle",
				Name:      "staleness_slots",
				Help:      "Slots elapsed since a market's oracle feed last accepted an observation.",
			}, []string{"market"}),
			liquidations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "predmarket",
				Subsystem: "liquidation",
				Name:      "executions_total",
				Help:      "Count of executed liquidations segmented by market and whether they were emergency-priority.",
			}, []string{"market", "emergency"}),
			breakerTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "predmarket",
				Subsystem: "breaker",
				Name:      "trips_total",
				Help:      "Count of circuit breaker trips segmented by kind and verse.",
			}, []string{"kind", "verse"}),
			elasticFeeBp: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "predmarket",
				Subsystem: "fees",
				Name:      "elastic_bp",
				Help:      "Current elastic taker fee in basis points, derived from vault coverage.",
			}),
			intentLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "predmarket",
				Subsystem: "engine",
				Name:      "intent_duration_seconds",
				Help:      "Latency distribution for dispatched engine intents.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"intent", "outcome"}),
			quotaThrottles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "predmarket",
				Subsystem: "quota",
				Name:      "throttles_total",
				Help:      "Count of intents rejected by the per-owner quota guard, segmented by module.",
			}, []string{"module"}),
		}
		prometheus.MustRegister(
			engineRegistry.coverageRatio,
			engineRegistry.oracleStaleness,
			engineRegistry.liquidations,
			engineRegistry.breakerTrips,
			engineRegistry.elasticFeeBp,
			engineRegistry.intentLatency,
			engineRegistry.quotaThrottles,
		)
	})
	return engineRegistry
}

// SetCoverageRatio records the vault's current coverage ratio.
func (m *EngineMetrics) SetCoverageRatio(ratio float64) {
	if m == nil {
		return
	}
	m.coverageRatio.Set(ratio)
}

// SetOracleStaleness records how many slots have elapsed since a market's
// last accepted oracle observation.
func (m *EngineMetrics) SetOracleStaleness(market string, slots float64) {
	if m == nil {
		return
	}
	m.oracleStaleness.WithLabelValues(market).Set(slots)
}

// RecordLiquidation increments the liquidation counter for a market.
func (m *EngineMetrics) RecordLiquidation(market string, emergency bool) {
	if m == nil {
		return
	}
	label := "false"
	if emergency {
		label = "true"
	}
	m.liquidations.WithLabelValues(market, label).Inc()
}

// RecordBreakerTrip increments the breaker trip counter for a kind/verse pair.
func (m *EngineMetrics) RecordBreakerTrip(kind, verse string) {
	if m == nil {
		return
	}
	m.breakerTrips.WithLabelValues(kind, verse).Inc()
}

// SetElasticFeeBp records the coverage-derived elastic taker fee.
func (m *EngineMetrics) SetElasticFeeBp(bp float64) {
	if m == nil {
		return
	}
	m.elasticFeeBp.Set(bp)
}

// ObserveIntent records the outcome and latency of a dispatched engine
// intent (e.g. "open_position", "liquidation_tick").
func (m *EngineMetrics) ObserveIntent(intent string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	if intent == "" {
		intent = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.intentLatency.WithLabelValues(intent, outcome).Observe(duration.Seconds())
}

// RecordQuotaThrottle increments the quota-throttle counter for a module.
func (m *EngineMetrics) RecordQuotaThrottle(module string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	m.quotaThrottles.WithLabelValues(module).Inc()
}
