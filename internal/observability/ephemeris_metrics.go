package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EphemerisCollector exposes Prometheus metrics for the SGP4 ephemeris
// bridge.
type EphemerisCollector struct {
	gatherer prometheus.Gatherer

	PropagationDuration prometheus.Histogram
	SatellitesLoaded    prometheus.Gauge
	PropagationErrors   prometheus.Counter
}

// NewEphemerisCollector registers ephemeris metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEphemerisCollector(reg prometheus.Registerer) (*EphemerisCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	propagation := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geodesy_ephemeris_propagation_duration_seconds",
		Help:    "Duration of SGP4 propagations across the requested epochs.",
		Buckets: []float64{1e-5, 1e-4, 1e-3, 0.01, 0.05, 0.1, 0.5, 1},
	})
	propagation, err := registerHistogram(reg, propagation, "geodesy_ephemeris_propagation_duration_seconds")
	if err != nil {
		return nil, err
	}

	loaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geodesy_ephemeris_satellites_loaded",
		Help: "Number of TLE sets currently parsed and held by propagators.",
	})
	loaded, err = registerGauge(reg, loaded, "geodesy_ephemeris_satellites_loaded")
	if err != nil {
		return nil, err
	}

	errCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodesy_ephemeris_propagation_errors_total",
		Help: "Cumulative number of propagations that produced an unusable state.",
	})
	errCounter, err = registerCounter(reg, errCounter, "geodesy_ephemeris_propagation_errors_total")
	if err != nil {
		return nil, err
	}

	return &EphemerisCollector{
		gatherer:            gatherer,
		PropagationDuration: propagation,
		SatellitesLoaded:    loaded,
		PropagationErrors:   errCounter,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *EphemerisCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObservePropagation records one propagation duration measurement.
func (c *EphemerisCollector) ObservePropagation(d time.Duration) {
	if c == nil || c.PropagationDuration == nil {
		return
	}
	c.PropagationDuration.Observe(d.Seconds())
}

// SetSatellitesLoaded updates the loaded TLE gauge.
func (c *EphemerisCollector) SetSatellitesLoaded(count int) {
	if c == nil || c.SatellitesLoaded == nil {
		return
	}
	c.SatellitesLoaded.Set(float64(count))
}

// IncPropagationErrors increments the propagation error counter.
func (c *EphemerisCollector) IncPropagationErrors() {
	if c == nil || c.PropagationErrors == nil {
		return
	}
	c.PropagationErrors.Inc()
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
