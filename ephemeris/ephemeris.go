// Package ephemeris bridges SGP4 two-line element propagation into the
// geodesy value types: a Propagator turns a TLE plus a vector of epochs into
// a Cartesian terrestrial PosVel.
package ephemeris

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/geodesy/ellipsoid"
	"github.com/signalsfoundry/geodesy/epoch"
	"github.com/signalsfoundry/geodesy/internal/logging"
	"github.com/signalsfoundry/geodesy/internal/observability"
	"github.com/signalsfoundry/geodesy/position"
)

// earthRotationRate is the IERS nominal Earth rotation rate in rad/s, used
// to correct inertial velocities into the rotating terrestrial frame.
const earthRotationRate = 7.2921150e-5

const kmToM = 1000.0

// Propagator propagates one TLE set with SGP4 and expresses the resulting
// states in the terrestrial frame.
type Propagator struct {
	name string
	sat  satellite.Satellite

	log     logging.Logger
	metrics *observability.EphemerisCollector
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithLogger attaches a logger; the default is the noop logger.
func WithLogger(log logging.Logger) Option {
	return func(p *Propagator) { p.log = log }
}

// WithMetrics attaches an ephemeris metrics collector.
func WithMetrics(m *observability.EphemerisCollector) Option {
	return func(p *Propagator) { p.metrics = m }
}

// NewFromTLE constructs a Propagator from a two-line element set.
func NewFromTLE(line1, line2 string, opts ...Option) (*Propagator, error) {
	line1, line2 = strings.TrimSpace(line1), strings.TrimSpace(line2)
	if len(line1) < 69 || len(line2) < 69 || !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
		return nil, fmt.Errorf("ephemeris: malformed TLE lines")
	}
	if line1[2:7] != line2[2:7] {
		return nil, fmt.Errorf("ephemeris: TLE lines carry different catalog numbers %q and %q", line1[2:7], line2[2:7])
	}

	p := &Propagator{
		name: strings.TrimSpace(line1[2:7]),
		sat:  satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
		log:  logging.Noop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics != nil {
		p.metrics.SetSatellitesLoaded(1)
	}
	return p, nil
}

// Name returns the satellite catalog number from the TLE.
func (p *Propagator) Name() string { return p.name }

// StatesAt propagates the satellite to every epoch of t and returns the
// states as a Cartesian terrestrial PosVel in meters and meters per second.
// Epochs are converted to utc before driving SGP4; sub-second fractions are
// truncated, matching the propagator's whole-second interface.
func (p *Propagator) StatesAt(ctx context.Context, t *epoch.Time) (*position.PosVel, error) {
	utc, err := t.At(epoch.UTC)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows := make([][]float64, utc.Len())
	for i := range rows {
		year, month, day, hour, min, sec := utc.DateTime(i)
		posECI, velECI := satellite.Propagate(p.sat, year, month, day, hour, min, int(sec))
		jd := satellite.JDay(year, month, day, hour, min, int(sec))
		gmst := satellite.ThetaG_JD(jd)
		posECEF := satellite.ECIToECEF(posECI, gmst)
		velECEF := satellite.ECIToECEF(velECI, gmst)

		row := []float64{
			posECEF.X * kmToM,
			posECEF.Y * kmToM,
			posECEF.Z * kmToM,
			// Rotating-frame velocity: subtract the frame rotation term.
			velECEF.X*kmToM + earthRotationRate*posECEF.Y*kmToM,
			velECEF.Y*kmToM - earthRotationRate*posECEF.X*kmToM,
			velECEF.Z * kmToM,
		}
		if !usable(row) {
			if p.metrics != nil {
				p.metrics.IncPropagationErrors()
			}
			p.log.Warn(ctx, "sgp4 propagation produced unusable state",
				logging.String("satellite", p.name), logging.Int("epoch_index", i))
			return nil, fmt.Errorf("ephemeris: propagation of satellite %s failed at epoch %d", p.name, i)
		}
		rows[i] = row
	}
	if p.metrics != nil {
		p.metrics.ObservePropagation(time.Since(start))
	}
	return position.NewPosVel(position.TRS, ellipsoid.WGS84, rows)
}

// PositionsAt is StatesAt reduced to the position triplets.
func (p *Propagator) PositionsAt(ctx context.Context, t *epoch.Time) (*position.Position, error) {
	states, err := p.StatesAt(ctx, t)
	if err != nil {
		return nil, err
	}
	return states.Position()
}

func usable(row []float64) bool {
	norm := 0.0
	for _, v := range row[:3] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		norm += v * v
	}
	for _, v := range row[3:] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	// Anything below the Earth surface means the propagation decayed.
	return norm > 6.3e6*6.3e6
}
