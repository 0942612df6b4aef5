// Package ellipsoid defines the reference ellipsoid parameters consumed by
// ellipsoidal coordinate conversions.
package ellipsoid

import "math"

// Ellipsoid is an immutable set of named physical constants describing a
// reference ellipsoid. Axes are in metres.
type Ellipsoid struct {
	Name string
	// A is the semi-major axis.
	A float64
	// InvF is the inverse flattening 1/f.
	InvF float64
}

// Builtin reference ellipsoids.
var (
	GRS80    = Ellipsoid{Name: "GRS80", A: 6378137.0, InvF: 298.257222101}
	WGS84    = Ellipsoid{Name: "WGS84", A: 6378137.0, InvF: 298.257223563}
	IERS2010 = Ellipsoid{Name: "IERS2010", A: 6378136.6, InvF: 298.25642}
)

var byName = map[string]Ellipsoid{
	"GRS80":    GRS80,
	"WGS84":    WGS84,
	"IERS2010": IERS2010,
}

// Get returns the builtin ellipsoid with the given name.
func Get(name string) (Ellipsoid, bool) {
	e, ok := byName[name]
	return e, ok
}

// F returns the flattening f = 1/InvF.
func (e Ellipsoid) F() float64 { return 1 / e.InvF }

// B returns the semi-minor axis b = a(1-f).
func (e Ellipsoid) B() float64 { return e.A * (1 - e.F()) }

// E2 returns the first eccentricity squared e² = f(2-f).
func (e Ellipsoid) E2() float64 {
	f := e.F()
	return f * (2 - f)
}

// MeanRadius returns the mean radius (2a+b)/3.
func (e Ellipsoid) MeanRadius() float64 { return (2*e.A + e.B()) / 3 }

// Unit returns the unit symbol for the ellipsoid's axes.
func (e Ellipsoid) Unit() string { return "meter" }

// IsZero reports whether the ellipsoid is the zero value (no parameters).
func (e Ellipsoid) IsZero() bool {
	return e.Name == "" && e.A == 0 && e.InvF == 0
}

// RadiusAt returns the radius of curvature in the prime vertical at the
// given geodetic latitude (radians).
func (e Ellipsoid) RadiusAt(lat float64) float64 {
	s := math.Sin(lat)
	return e.A / math.Sqrt(1-e.E2()*s*s)
}
