package sweep

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethanol-sim/ethanol-sim/sim"
)

// Metrics holds the sweep's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	Evaluated prometheus.Counter
	Failures  *prometheus.CounterVec
	Emitted   prometheus.Counter
	Purity    prometheus.Histogram
	Energy    prometheus.Histogram
}

// NewMetrics registers the sweep collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Evaluated: f.NewCounter(prometheus.CounterOpts{
			Name: "ethanolsim_combinations_evaluated_total",
			Help: "Combinations run through the pipeline",
		}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ethanolsim_combinations_failed_total",
			Help: "Combinations whose run failed, by error kind",
		}, []string{"kind"}),
		Emitted: f.NewCounter(prometheus.CounterOpts{
			Name: "ethanolsim_records_emitted_total",
			Help: "Records handed to the result sink",
		}),
		Purity: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ethanolsim_outlet_purity",
			Help:    "Outlet ethanol mass fraction of valid runs",
			Buckets: prometheus.LinearBuckets(0.05, 0.05, 19),
		}),
		Energy: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ethanolsim_energy_consumed_watts",
			Help:    "Energy dissipated per valid run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
	}
}

// FailureKind classifies a run error for the failures counter.
func FailureKind(err error) string {
	switch {
	case sim.IsConfigurationError(err):
		return "configuration"
	case sim.IsPhysicallyInvalid(err):
		return "physical"
	case errors.Is(err, sim.ErrDegenerateStream):
		return "degenerate"
	}
	return "other"
}

func (m *Metrics) observe(r Record) {
	if m == nil {
		return
	}
	m.Evaluated.Inc()
	if !r.Valid() {
		m.Failures.WithLabelValues(FailureKind(r.Err)).Inc()
		return
	}
	m.Purity.Observe(r.Result.Purity)
	m.Energy.Observe(r.Result.EnergyConsumed)
}

func (m *Metrics) emitted() {
	if m == nil {
		return
	}
	m.Emitted.Inc()
}
