package position

import (
	"math"

	"github.com/signalsfoundry/geodesy/registry"
)

// GM is the EGM2008 geocentric gravitational constant in m^3/s^2, used by
// the osculating-element conversions.
const GM = 3.986004418e14

// Eccentricity and inclination below these thresholds leave the argument of
// perigee respectively the ascending node undefined.
const (
	circularTol   = 1e-8
	equatorialTol = 1e-8
)

// trsToKepler converts Cartesian position/velocity rows to osculating Kepler
// elements (a, e, i, raan, argp, eccentric anomaly). Circular, equatorial,
// rectilinear, and non-elliptic states have no complete element set and are
// reported as degenerate input with the offending indices.
func trsToKepler(p payload) (payload, error) {
	out := payload{ell: p.ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	var bad []int
	var reason string
	flag := func(i int, why string) {
		bad = append(bad, i)
		if reason == "" {
			reason = why
		}
		out.rows[i] = make([]float64, 6)
	}
	for i, row := range p.rows {
		r := vec3{row[0], row[1], row[2]}
		v := vec3{row[3], row[4], row[5]}
		rn := r.norm()
		if rn < geocenterTol {
			flag(i, "position at geocenter")
			continue
		}

		h := r.cross(v)
		hn := h.norm()
		if hn < equatorialTol*rn {
			flag(i, "rectilinear trajectory, no orbital plane")
			continue
		}

		inv := 2/rn - v.dot(v)/GM
		if inv <= 0 {
			flag(i, "non-elliptic orbit")
			continue
		}
		a := 1 / inv

		// Eccentricity vector points at perigee.
		ev := v.cross(h).scale(1 / GM).sub(r.scale(1 / rn))
		e := ev.norm()
		if e < circularTol {
			flag(i, "circular orbit, argument of perigee undefined")
			continue
		}

		inc := math.Acos(clamp(h.z/hn, -1, 1))
		node := vec3{-h.y, h.x, 0}
		nn := node.norm()
		if nn < equatorialTol*hn {
			flag(i, "equatorial orbit, ascending node undefined")
			continue
		}

		raan := math.Atan2(node.y, node.x)
		argp := math.Acos(clamp(node.dot(ev)/(nn*e), -1, 1))
		if ev.z < 0 {
			argp = 2*math.Pi - argp
		}

		// True anomaly, then the eccentric anomaly via the standard
		// half-angle relation.
		nu := math.Acos(clamp(ev.dot(r)/(e*rn), -1, 1))
		if r.dot(v) < 0 {
			nu = 2*math.Pi - nu
		}
		ecc := 2 * math.Atan2(math.Sqrt(1-e)*math.Sin(nu/2), math.Sqrt(1+e)*math.Cos(nu/2))

		out.rows[i] = []float64{a, e, inc, wrapTwoPi(raan), argp, wrapTwoPi(ecc)}
	}
	if bad != nil {
		return payload{}, &registry.DegenerateInputError{Conversion: "trs->kepler", Reason: reason, Indices: bad}
	}
	return out, nil
}

// keplerToTRS converts osculating elements back to Cartesian
// position/velocity rows via the perifocal frame.
func keplerToTRS(p payload) (payload, error) {
	out := payload{ell: p.ell, rows: make([][]float64, len(p.rows)), ref: p.ref}
	var bad []int
	var reason string
	for i, row := range p.rows {
		a, e, inc, raan, argp, ecc := row[0], row[1], row[2], row[3], row[4], row[5]
		if a <= 0 || e < 0 || e >= 1 {
			bad = append(bad, i)
			if reason == "" {
				reason = "elements outside the elliptic domain"
			}
			out.rows[i] = make([]float64, 6)
			continue
		}

		sinE, cosE := math.Sincos(ecc)
		rn := a * (1 - e*cosE)
		// Perifocal coordinates straight from the eccentric anomaly.
		xp := a * (cosE - e)
		yp := a * math.Sqrt(1-e*e) * sinE
		f := math.Sqrt(GM*a) / rn
		vxp := -f * sinE
		vyp := f * math.Sqrt(1-e*e) * cosE

		rot := perifocalRotation(inc, raan, argp)
		rv := rot.apply(vec3{xp, yp, 0})
		vv := rot.apply(vec3{vxp, vyp, 0})
		out.rows[i] = []float64{rv.x, rv.y, rv.z, vv.x, vv.y, vv.z}
	}
	if bad != nil {
		return payload{}, &registry.DegenerateInputError{Conversion: "kepler->trs", Reason: reason, Indices: bad}
	}
	return out, nil
}

// perifocalRotation builds the rotation taking perifocal coordinates to the
// Cartesian frame: Rz(raan) Rx(i) Rz(argp).
func perifocalRotation(inc, raan, argp float64) mat3 {
	sinO, cosO := math.Sincos(raan)
	sinI, cosI := math.Sincos(inc)
	sinW, cosW := math.Sincos(argp)
	return mat3{
		vec3{cosO*cosW - sinO*sinW*cosI, -cosO*sinW - sinO*cosW*cosI, sinO * sinI},
		vec3{sinO*cosW + cosO*sinW*cosI, -sinO*sinW + cosO*cosW*cosI, -cosO * sinI},
		vec3{sinW * sinI, cosW * sinI, cosI},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapTwoPi(v float64) float64 {
	v = math.Mod(v, 2*math.Pi)
	if v < 0 {
		v += 2 * math.Pi
	}
	return v
}
