// Package position implements the immutable, vectorized position and
// position/velocity value types. A Position holds N 3-vectors and a PosVel
// holds N 6-vectors, canonically expressed as Cartesian terrestrial
// coordinates in meters (and meters per second), tagged with exactly one
// coordinate system and carrying the reference ellipsoid that ellipsoidal
// conversions are parameterized by.
//
// Delta variants hold a relative vector plus a reference absolute value.
// Their reference-frame systems (east-north-up, along-cross-radial) derive a
// per-element rotation from the reference; conversion to a system only
// registered for the absolute family goes through add-convert-subtract
// against the reference.
package position

import (
	"math"

	"github.com/signalsfoundry/geodesy/ellipsoid"
	"github.com/signalsfoundry/geodesy/registry"
)

// Coordinate system tags.
const (
	TRS    = registry.Tag("trs")    // Cartesian terrestrial x, y, z
	LLH    = registry.Tag("llh")    // geodetic latitude, longitude, height
	Kepler = registry.Tag("kepler") // osculating elements a, e, i, raan, argp, E
	ENU    = registry.Tag("enu")    // topocentric east, north, up (delta only)
	ACR    = registry.Tag("acr")    // along, cross, radial (delta only)
)

// payload is the raw value the position registries convert: N rows of fixed
// width (3 or 6) plus the ellipsoid parameters. Delta payloads additionally
// carry the reference absolute rows, always in trs, which frame edges use to
// derive their rotations.
type payload struct {
	ell  ellipsoid.Ellipsoid
	rows [][]float64
	ref  [][]float64
}

func (p payload) clone() payload {
	out := payload{ell: p.ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	for i, row := range p.rows {
		out.rows[i] = append([]float64(nil), row...)
	}
	return out
}

// The four conversion families. Absolute and delta variants are separate
// registries because their edge sets differ: frame systems exist only for
// deltas, ellipsoidal and orbital systems only for absolutes.
var (
	Positions      = registry.New[payload]("position system")
	PosVels        = registry.New[payload]("position/velocity system")
	PositionDeltas = registry.New[payload]("position delta system")
	PosVelDeltas   = registry.New[payload]("position/velocity delta system")
)

func init() {
	Positions.MustRegister(
		registry.System{Tag: TRS, Desc: "Cartesian terrestrial", Units: []string{"meter", "meter", "meter"}},
		registry.Edge[payload]{From: TRS, To: LLH, Apply: trsToLLH},
	)
	Positions.MustRegister(
		registry.System{Tag: LLH, Desc: "geodetic latitude, longitude, ellipsoidal height", Units: []string{"radian", "radian", "meter"}},
		registry.Edge[payload]{From: LLH, To: TRS, Apply: llhToTRS},
	)

	PosVels.MustRegister(
		registry.System{Tag: TRS, Desc: "Cartesian terrestrial position and velocity",
			Units: []string{"meter", "meter", "meter", "meter/second", "meter/second", "meter/second"}},
		registry.Edge[payload]{From: TRS, To: Kepler, Apply: trsToKepler},
	)
	PosVels.MustRegister(
		registry.System{Tag: Kepler, Desc: "osculating Kepler elements a, e, i, raan, argp, eccentric anomaly",
			Units: []string{"meter", "", "radian", "radian", "radian", "radian"}},
		registry.Edge[payload]{From: Kepler, To: TRS, Apply: keplerToTRS},
	)

	PositionDeltas.MustRegister(
		registry.System{Tag: TRS, Desc: "Cartesian terrestrial difference", Units: []string{"meter", "meter", "meter"}},
		registry.Edge[payload]{From: TRS, To: ENU, Apply: trsToENU},
	)
	PositionDeltas.MustRegister(
		registry.System{Tag: ENU, Desc: "topocentric east, north, up about the reference", Units: []string{"meter", "meter", "meter"}},
		registry.Edge[payload]{From: ENU, To: TRS, Apply: enuToTRS},
	)

	PosVelDeltas.MustRegister(
		registry.System{Tag: TRS, Desc: "Cartesian terrestrial position and velocity difference",
			Units: []string{"meter", "meter", "meter", "meter/second", "meter/second", "meter/second"}},
		registry.Edge[payload]{From: TRS, To: ACR, Apply: trsToACR},
	)
	PosVelDeltas.MustRegister(
		registry.System{Tag: ACR, Desc: "along-track, cross-track, radial about the reference orbit",
			Units: []string{"meter", "meter", "meter", "meter/second", "meter/second", "meter/second"}},
		registry.Edge[payload]{From: ACR, To: TRS, Apply: acrToTRS},
	)
}

// geocenterTol is the radius in meters below which a point is treated as
// coincident with the ellipsoid center, where geodetic coordinates are
// undefined.
const geocenterTol = 1e-3

// trsToLLH converts Cartesian rows to geodetic latitude, longitude, and
// ellipsoidal height by fixed-point iteration on the latitude. Poles are
// handled directly; the geocenter has no geodetic image and is reported as
// degenerate input.
func trsToLLH(p payload) (payload, error) {
	ell := p.ell
	a, e2, b := ell.A, ell.E2(), ell.B()
	out := payload{ell: ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	var bad []int
	for i, row := range p.rows {
		x, y, z := row[0], row[1], row[2]
		rho := math.Hypot(x, y)
		if rho < geocenterTol && math.Abs(z) < geocenterTol {
			bad = append(bad, i)
			out.rows[i] = []float64{0, 0, 0}
			continue
		}
		if rho < geocenterTol {
			// On the polar axis the longitude is arbitrary; report zero.
			lat := math.Copysign(math.Pi/2, z)
			out.rows[i] = []float64{lat, 0, math.Abs(z) - b}
			continue
		}
		lon := math.Atan2(y, x)
		lat := math.Atan2(z, rho*(1-e2))
		var h float64
		for iter := 0; iter < 10; iter++ {
			sin := math.Sin(lat)
			n := a / math.Sqrt(1-e2*sin*sin)
			h = rho/math.Cos(lat) - n
			next := math.Atan2(z, rho*(1-e2*n/(n+h)))
			if math.Abs(next-lat) < 1e-13 {
				lat = next
				break
			}
			lat = next
		}
		out.rows[i] = []float64{lat, lon, h}
	}
	if bad != nil {
		return payload{}, &registry.DegenerateInputError{
			Conversion: "trs->llh", Reason: "geocenter has no geodetic coordinates", Indices: bad,
		}
	}
	return out, nil
}

// llhToTRS is the closed-form inverse of trsToLLH.
func llhToTRS(p payload) (payload, error) {
	ell := p.ell
	a, e2 := ell.A, ell.E2()
	out := payload{ell: ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	for i, row := range p.rows {
		lat, lon, h := row[0], row[1], row[2]
		sin, cos := math.Sin(lat), math.Cos(lat)
		n := a / math.Sqrt(1-e2*sin*sin)
		out.rows[i] = []float64{
			(n + h) * cos * math.Cos(lon),
			(n + h) * cos * math.Sin(lon),
			(n*(1-e2) + h) * sin,
		}
	}
	return out, nil
}
