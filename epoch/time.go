// Package epoch implements the immutable, vectorized time value type. A
// Time holds N epochs in a precision-preserving two-part representation
// (whole Modified Julian Days plus fraction of day), tagged with exactly one
// time scale. Converting scale produces a new Time via the registered
// conversion edges; re-expressing the same epochs in another format (ISO
// string, MJD, GPS week/seconds, ...) is a pure computed view that needs no
// scale conversion.
//
// Calendar-based formats treat every day as 86400 SI seconds: epochs inside
// a leap second cannot be represented, so those formats are not bijective
// with the internal representation to sub-second precision across leap
// boundaries. This is a documented limitation, not a rounding choice.
package epoch

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/geodesy/internal/calendar"
	"github.com/signalsfoundry/geodesy/registry"
)

// Time is an ordered sequence of N epochs in a single time scale. It is
// immutable: every operation returns a new instance. Converted scales are
// cached per instance on first request.
type Time struct {
	scale registry.Tag
	parts Parts

	mu    sync.Mutex
	cache map[registry.Tag]*Time
}

// FromMJDParts constructs a Time from an exact two-part representation. The
// two slices must have equal length; values are copied and normalized. This
// is the factory external containers use to round-trip the internal
// representation exactly.
func FromMJDParts(scale registry.Tag, days, frac []float64) (*Time, error) {
	if _, err := Scales.Lookup(scale); err != nil {
		return nil, err
	}
	if len(days) != len(frac) {
		return nil, &registry.LengthMismatchError{What: "epoch parts", Want: len(days), Got: len(frac)}
	}
	p := Parts{Days: days, Frac: frac}.clone().normalize()
	return &Time{scale: scale, parts: p}, nil
}

// FromMJD constructs a Time from single-float MJD values.
func FromMJD(scale registry.Tag, mjd []float64) (*Time, error) {
	days := make([]float64, len(mjd))
	frac := make([]float64, len(mjd))
	for i, v := range mjd {
		days[i], frac[i] = split(v)
	}
	return FromMJDParts(scale, days, frac)
}

// FromDateTime constructs a single-epoch Time from a civil date and time of
// day in the given scale.
func FromDateTime(scale registry.Tag, year, month, day, hour, min int, sec float64) (*Time, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("epoch: month %d out of range", month)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec >= 60 {
		return nil, fmt.Errorf("epoch: time of day %02d:%02d:%09.6f out of range", hour, min, sec)
	}
	mjd := calendar.MJDFromDate(year, month, day)
	frac := (float64(hour)*3600 + float64(min)*60 + sec) / secsPerDay
	return FromMJDParts(scale, []float64{float64(mjd)}, []float64{frac})
}

// FromGPSWeekSow constructs a Time in the gps scale from GPS week numbers
// and seconds of week.
func FromGPSWeekSow(week []int, sow []float64) (*Time, error) {
	if len(week) != len(sow) {
		return nil, &registry.LengthMismatchError{What: "gps week/sow", Want: len(week), Got: len(sow)}
	}
	days := make([]float64, len(week))
	frac := make([]float64, len(week))
	for i := range week {
		days[i] = gpsEpochMJD + float64(week[i]*7)
		frac[i] = sow[i] / secsPerDay
	}
	return FromMJDParts(GPS, days, frac)
}

// New constructs a Time from raw values in the named scale and format, the
// entry point for parser output. values must have the type the format's
// decoder documents ([]string for iso, []float64 for mjd, ...).
func New(scale registry.Tag, format string, values any) (*Time, error) {
	f, err := LookupFormat(format)
	if err != nil {
		return nil, err
	}
	p, err := f.Decode(values)
	if err != nil {
		return nil, err
	}
	return FromMJDParts(scale, p.Days, p.Frac)
}

// Scale returns the time scale tag the value is expressed in.
func (t *Time) Scale() registry.Tag { return t.scale }

// Len returns the number of epochs.
func (t *Time) Len() int { return t.parts.len() }

// Unit returns the physical unit of the internal representation.
func (t *Time) Unit() []string {
	sys, err := Scales.Lookup(t.scale)
	if err != nil {
		return nil
	}
	return sys.Units
}

// At returns the same epochs expressed in another scale, converting through
// the registered edge graph. Results are cached on the instance: repeated
// requests for the same scale reuse the first computation. The receiver is
// never modified.
func (t *Time) At(scale registry.Tag) (*Time, error) {
	if scale == t.scale {
		return t, nil
	}

	t.mu.Lock()
	if cached, ok := t.cache[scale]; ok {
		t.mu.Unlock()
		return cached, nil
	}
	t.mu.Unlock()

	// Convert outside the lock; the computation is pure, so a racing
	// duplicate produces an equal value and the last write wins.
	p, err := Scales.Convert(t.parts, t.scale, scale)
	if err != nil {
		return nil, err
	}
	out := &Time{scale: scale, parts: p}

	t.mu.Lock()
	if t.cache == nil {
		t.cache = make(map[registry.Tag]*Time)
	}
	t.cache[scale] = out
	t.mu.Unlock()
	return out, nil
}

// MJDParts returns copies of the exact two-part representation.
func (t *Time) MJDParts() (days, frac []float64) {
	p := t.parts.clone()
	return p.Days, p.Frac
}

// MJD returns single-float Modified Julian Dates, accepting the precision
// loss of collapsing the two parts.
func (t *Time) MJD() []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.parts.mjd(i)
	}
	return out
}

// JD returns single-float Julian Dates.
func (t *Time) JD() []float64 {
	out := t.MJD()
	for i := range out {
		out[i] += mjdToJD
	}
	return out
}

// DateTime returns the civil date and time of day of epoch i.
func (t *Time) DateTime(i int) (year, month, day, hour, min int, sec float64) {
	return civilFromParts(t.parts.Days[i], t.parts.Frac[i], 0)
}

// ISO returns the epochs as ISO 8601 strings at microsecond precision.
func (t *Time) ISO() ([]string, error) {
	v, err := t.Encode("iso")
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// GPSWeekSow returns the epochs as GPS weeks and seconds of week. The
// conventional GPS week number is obtained when the value is in the gps
// scale; convert first if needed.
func (t *Time) GPSWeekSow() (GPSWeekSow, error) {
	v, err := t.Encode("gpsweeksow")
	if err != nil {
		return GPSWeekSow{}, err
	}
	return v.(GPSWeekSow), nil
}

// YearDoySod returns the epochs as year, day of year, and seconds of day.
func (t *Time) YearDoySod() (YearDoySod, error) {
	v, err := t.Encode("yeardoysod")
	if err != nil {
		return YearDoySod{}, err
	}
	return v.(YearDoySod), nil
}

// DecimalYear returns the epochs as fractional calendar years.
func (t *Time) DecimalYear() ([]float64, error) {
	v, err := t.Encode("decimalyear")
	if err != nil {
		return nil, err
	}
	return v.([]float64), nil
}

// YearVars returns per-epoch calendar naming variables (yyyy, yy, mm, dd,
// doy, hh, min, sec) at whole-second precision.
func (t *Time) YearVars() ([]map[string]string, error) {
	v, err := t.Encode("yearvars")
	if err != nil {
		return nil, err
	}
	return v.([]map[string]string), nil
}

// Index returns the single epoch at position i, preserving the scale.
func (t *Time) Index(i int) *Time {
	return &Time{scale: t.scale, parts: Parts{
		Days: []float64{t.parts.Days[i]},
		Frac: []float64{t.parts.Frac[i]},
	}}
}

// Slice returns epochs [lo, hi), preserving the scale.
func (t *Time) Slice(lo, hi int) *Time {
	sub := Parts{Days: t.parts.Days[lo:hi], Frac: t.parts.Frac[lo:hi]}
	return &Time{scale: t.scale, parts: sub.clone()}
}

// Sub returns the elementwise difference t - other as a Delta. Both values
// must carry the same scale; combining across scales without an explicit
// conversion is a tag-discipline error.
func (t *Time) Sub(other *Time) (*Delta, error) {
	if t.scale != other.scale {
		return nil, &registry.TagMismatchError{Family: "time scale", A: t.scale, B: other.scale}
	}
	if t.Len() != other.Len() {
		return nil, &registry.LengthMismatchError{What: "epoch difference", Want: t.Len(), Got: other.Len()}
	}
	d := Parts{Days: make([]float64, t.Len()), Frac: make([]float64, t.Len())}
	for i := range d.Days {
		d.Days[i] = t.parts.Days[i] - other.parts.Days[i]
		d.Frac[i] = t.parts.Frac[i] - other.parts.Frac[i]
	}
	return &Delta{parts: d.normalize()}, nil
}

// Add returns a new Time shifted by the given duration.
func (t *Time) Add(d *Delta) (*Time, error) {
	if t.Len() != d.Len() {
		return nil, &registry.LengthMismatchError{What: "epoch shift", Want: t.Len(), Got: d.Len()}
	}
	out := t.parts.clone()
	for i := range out.Days {
		out.Days[i] += d.parts.Days[i]
		out.Frac[i] += d.parts.Frac[i]
	}
	return &Time{scale: t.scale, parts: out.normalize()}, nil
}

// Delta is an ordered sequence of N durations, stored in the same two-part
// day representation as Time but carrying no scale tag.
type Delta struct {
	parts Parts
}

// DeltaFromSeconds constructs a Delta from durations in seconds.
func DeltaFromSeconds(sec []float64) *Delta {
	p := Parts{Days: make([]float64, len(sec)), Frac: make([]float64, len(sec))}
	for i, s := range sec {
		p.Days[i], p.Frac[i] = split(s / secsPerDay)
	}
	return &Delta{parts: p}
}

// Len returns the number of durations.
func (d *Delta) Len() int { return d.parts.len() }

// Seconds returns the durations in seconds.
func (d *Delta) Seconds() []float64 {
	out := make([]float64, d.Len())
	for i := range out {
		out[i] = (d.parts.Days[i] + d.parts.Frac[i]) * secsPerDay
	}
	return out
}

// Days returns the durations in days.
func (d *Delta) Days() []float64 {
	out := make([]float64, d.Len())
	for i := range out {
		out[i] = d.parts.Days[i] + d.parts.Frac[i]
	}
	return out
}

// Unit returns the physical unit Seconds reports in.
func (d *Delta) Unit() []string { return []string{"second"} }

// mjdToJD is the offset from Modified Julian Date to Julian Date.
const mjdToJD = 2400000.5

// secondsBetween collapses a two-part difference to seconds, used by tests
// and tolerance checks.
func secondsBetween(a, b *Time) []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = ((a.parts.Days[i] - b.parts.Days[i]) + (a.parts.Frac[i] - b.parts.Frac[i])) * secsPerDay
	}
	return out
}
