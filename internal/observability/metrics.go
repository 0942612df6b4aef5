package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/geodesy/registry"
)

// ConversionCollector bundles Prometheus metrics for the conversion
// registries and implements registry.Observer, so it can be attached to any
// conversion family with SetObserver.
type ConversionCollector struct {
	gatherer prometheus.Gatherer

	Conversions *prometheus.CounterVec
	Durations   *prometheus.HistogramVec
	PathLookups *prometheus.CounterVec
}

// NewConversionCollector registers the conversion metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil. Re-registration returns the existing collectors, so multiple
// components can share one collector per process.
func NewConversionCollector(reg prometheus.Registerer) (*ConversionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodesy_conversions_total",
		Help: "Total conversions applied, labeled by family, endpoints, and outcome.",
	}, []string{"family", "from", "to", "status"})
	conversions, err := registerCounterVec(reg, conversions, "geodesy_conversions_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geodesy_conversion_duration_seconds",
		Help:    "Conversion latency in seconds, including path application across all N elements.",
		Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 0.01, 0.1, 0.5, 1, 5},
	}, []string{"family", "from", "to"})
	durations, err = registerHistogramVec(reg, durations, "geodesy_conversion_duration_seconds")
	if err != nil {
		return nil, err
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodesy_path_lookups_total",
		Help: "Conversion path resolutions, labeled by family and memoization outcome.",
	}, []string{"family", "cache"})
	lookups, err = registerCounterVec(reg, lookups, "geodesy_path_lookups_total")
	if err != nil {
		return nil, err
	}

	return &ConversionCollector{
		gatherer:    gatherer,
		Conversions: conversions,
		Durations:   durations,
		PathLookups: lookups,
	}, nil
}

// ObserveConversion implements registry.Observer.
func (c *ConversionCollector) ObserveConversion(family string, from, to registry.Tag, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	if c.Conversions != nil {
		c.Conversions.WithLabelValues(family, string(from), string(to), status).Inc()
	}
	if c.Durations != nil {
		c.Durations.WithLabelValues(family, string(from), string(to)).Observe(elapsed.Seconds())
	}
}

// ObservePathLookup implements registry.Observer.
func (c *ConversionCollector) ObservePathLookup(family string, cached bool) {
	if c == nil || c.PathLookups == nil {
		return
	}
	cache := "miss"
	if cached {
		cache = "hit"
	}
	c.PathLookups.WithLabelValues(family, cache).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ConversionCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
