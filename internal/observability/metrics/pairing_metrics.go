// Package metrics exposes prometheus instruments for the pairing engine.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels applied to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

type PairingMetrics struct {
	scansRecorded    prometheus.Counter
	pairsFormed      prometheus.Counter
	pairingConflicts prometheus.Counter
	pairDistance     prometheus.Histogram
	pairOffset       prometheus.Histogram
}

var (
	pairingMetricsOnce sync.Once
	pairingMetrics     *PairingMetrics
)

func Pairing() *PairingMetrics {
	return PairingWithConfig(Config{})
}

func PairingWithConfig(cfg Config) *PairingMetrics {
	pairingMetricsOnce.Do(func() {
		pairingMetrics = newPairingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return pairingMetrics
}

// NewPairing builds an instrument set on the given registerer, independent of
// the process-wide singleton. Intended for tests and custom registries.
func NewPairing(registerer prometheus.Registerer, cfg Config) *PairingMetrics {
	return newPairingMetrics(registerer, cfg)
}

func ResetPairingMetricsForTest() {
	pairingMetricsOnce = sync.Once{}
	pairingMetrics = nil
}

func newPairingMetrics(registerer prometheus.Registerer, cfg Config) *PairingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "pairlink"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	scansRecorded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "pairlink_scans_recorded_total",
			Help:        "Total scan events appended to the store.",
			ConstLabels: constLabels,
		},
	)

	pairsFormed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "pairlink_pairs_formed_total",
			Help:        "Total mutual pairings formed.",
			ConstLabels: constLabels,
		},
	)

	pairingConflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "pairlink_pairing_conflicts_total",
			Help:        "Total pairing attempts lost to a concurrent writer and retried.",
			ConstLabels: constLabels,
		},
	)

	pairDistance := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "pairlink_pair_distance_meters",
			Help:        "Straight-line distance between paired scans.",
			Buckets:     []float64{1, 5, 10, 20, 30, 40, 50},
			ConstLabels: constLabels,
		},
	)

	pairOffset := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "pairlink_pair_offset_seconds",
			Help:        "Time offset between paired scans.",
			Buckets:     []float64{1, 5, 15, 30, 60, 90, 120},
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		scansRecorded,
		pairsFormed,
		pairingConflicts,
		pairDistance,
		pairOffset,
	)

	return &PairingMetrics{
		scansRecorded:    scansRecorded,
		pairsFormed:      pairsFormed,
		pairingConflicts: pairingConflicts,
		pairDistance:     pairDistance,
		pairOffset:       pairOffset,
	}
}

func (m *PairingMetrics) IncScanRecorded() {
	if m == nil {
		return
	}
	m.scansRecorded.Inc()
}

func (m *PairingMetrics) ObservePairFormed(distanceMeters, secondsOffset float64) {
	if m == nil {
		return
	}
	m.pairsFormed.Inc()
	m.pairDistance.Observe(distanceMeters)
	m.pairOffset.Observe(secondsOffset)
}

func (m *PairingMetrics) IncPairingConflict() {
	if m == nil {
		return
	}
	m.pairingConflicts.Inc()
}
