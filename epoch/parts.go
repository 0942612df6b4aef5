package epoch

import "math"

// Parts is the raw vectorized payload that scale-conversion edges operate
// on: per epoch, a whole Modified Julian Day count and a fraction of day.
// The true value is Days[i] + Frac[i]; splitting it preserves sub-microsecond
// precision across the full MJD range, where a single float64 cannot.
type Parts struct {
	Days []float64 // integer-valued whole days
	Frac []float64 // fraction of day, in [0,1) once normalized
}

// secsPerDay is the length of every internal day in SI seconds. Calendar
// formats share this convention; see the package comment for the leap-second
// caveat.
const secsPerDay = 86400.0

func (p Parts) len() int { return len(p.Days) }

// clone returns a deep copy so edges never mutate their input.
func (p Parts) clone() Parts {
	out := Parts{Days: make([]float64, len(p.Days)), Frac: make([]float64, len(p.Frac))}
	copy(out.Days, p.Days)
	copy(out.Frac, p.Frac)
	return out
}

// normalize folds whole days out of Frac so that Frac ∈ [0,1).
func (p Parts) normalize() Parts {
	for i := range p.Frac {
		d := math.Floor(p.Frac[i])
		if d != 0 {
			p.Days[i] += d
			p.Frac[i] -= d
		}
	}
	return p
}

// addSeconds returns a copy of p shifted by sec seconds at every epoch.
func (p Parts) addSeconds(sec float64) Parts {
	out := p.clone()
	for i := range out.Frac {
		out.Frac[i] += sec / secsPerDay
	}
	return out.normalize()
}

// mjd returns the single-float MJD of epoch i, losing the two-part
// precision. Callers that need exact values use Days/Frac directly.
func (p Parts) mjd(i int) float64 { return p.Days[i] + p.Frac[i] }

// split converts a single-float value into normalized two-part form.
func split(v float64) (day, frac float64) {
	day = math.Floor(v)
	return day, v - day
}
