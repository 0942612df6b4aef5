package epoch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/signalsfoundry/geodesy/internal/calendar"
	"github.com/signalsfoundry/geodesy/registry"
)

// Format is a pure, scale-independent re-encoding of the internal two-part
// representation. Encode and Decode are inverses within the format's
// documented precision; formats whose precision is coarser than the internal
// representation (whole-second calendar variables, decimal years) are not
// bijective and say so in their Desc.
type Format struct {
	Name string
	Desc string
	// Encode re-expresses the internal value in this format. The concrete
	// result type is fixed per format and documented in Desc.
	Encode func(Parts) (any, error)
	// Decode parses a value of this format into the internal representation.
	Decode func(any) (Parts, error)
}

var (
	formatMu    sync.RWMutex
	formats     = make(map[string]Format)
	formatOrder []string
)

// RegisterFormat adds a named format. Re-registering an existing name is an
// error; formats have no identity beyond their functions, so there is no
// idempotent case.
func RegisterFormat(f Format) error {
	formatMu.Lock()
	defer formatMu.Unlock()
	if _, ok := formats[f.Name]; ok {
		return &registry.DuplicateSystemError{Family: "time format", Tag: registry.Tag(f.Name)}
	}
	formats[f.Name] = f
	formatOrder = append(formatOrder, f.Name)
	return nil
}

// LookupFormat returns the named format or an unknown-system error listing
// all registered format names.
func LookupFormat(name string) (Format, error) {
	formatMu.RLock()
	defer formatMu.RUnlock()
	f, ok := formats[name]
	if !ok {
		known := make([]registry.Tag, len(formatOrder))
		for i, n := range formatOrder {
			known[i] = registry.Tag(n)
		}
		return Format{}, &registry.UnknownSystemError{Family: "time format", Tag: registry.Tag(name), Known: known}
	}
	return f, nil
}

// Formats returns the registered format names in registration order.
func Formats() []string {
	formatMu.RLock()
	defer formatMu.RUnlock()
	out := make([]string, len(formatOrder))
	copy(out, formatOrder)
	return out
}

// Encode re-expresses the epochs in the named format.
func (t *Time) Encode(format string) (any, error) {
	f, err := LookupFormat(format)
	if err != nil {
		return nil, err
	}
	return f.Encode(t.parts.clone())
}

func init() {
	mustRegisterFormat := func(f Format) {
		if err := RegisterFormat(f); err != nil {
			panic(err)
		}
	}
	mustRegisterFormat(Format{
		Name:   "iso",
		Desc:   "[]string, ISO 8601 calendar date-time, microsecond precision",
		Encode: encodeISO,
		Decode: decodeISO,
	})
	mustRegisterFormat(Format{
		Name:   "mjd",
		Desc:   "[]float64, Modified Julian Date",
		Encode: encodeMJD,
		Decode: decodeMJD,
	})
	mustRegisterFormat(Format{
		Name:   "jd",
		Desc:   "[]float64, Julian Date",
		Encode: encodeJD,
		Decode: decodeJD,
	})
	mustRegisterFormat(Format{
		Name:   "gpsweeksow",
		Desc:   "GPSWeekSow, weeks and seconds of week since 1980-01-06",
		Encode: encodeGPSWeekSow,
		Decode: decodeGPSWeekSow,
	})
	mustRegisterFormat(Format{
		Name:   "yeardoysod",
		Desc:   "YearDoySod, year, day of year, and seconds of day",
		Encode: encodeYearDoySod,
		Decode: decodeYearDoySod,
	})
	mustRegisterFormat(Format{
		Name: "decimalyear",
		Desc: "[]float64, year plus elapsed fraction of that calendar year; " +
			"ignores leap seconds, so it is not bijective to sub-second precision",
		Encode: encodeDecimalYear,
		Decode: decodeDecimalYear,
	})
	mustRegisterFormat(Format{
		Name: "yearvars",
		Desc: "[]map[string]string, calendar naming variables (yyyy, yy, mm, dd, doy, hh, min, sec); " +
			"whole-second precision only",
		Encode: encodeYearVars,
		Decode: decodeYearVars,
	})
}

// civilFromParts splits one two-part epoch into calendar components. When
// quantum > 0 the seconds of day are rounded to that grain first, with
// rollover into the next day handled before the split.
func civilFromParts(day, frac, quantum float64) (year, month, dom, hour, min int, sec float64) {
	d := int(day)
	sod := frac * secsPerDay
	if quantum > 0 {
		sod = math.Round(sod/quantum) * quantum
	}
	for sod >= secsPerDay {
		d++
		sod -= secsPerDay
	}
	if sod < 0 {
		d--
		sod += secsPerDay
	}
	year, month, dom = calendar.DateFromMJD(d)
	hour = int(sod / 3600)
	min = int(sod/60) - hour*60
	sec = sod - float64(hour)*3600 - float64(min)*60
	return
}

func encodeISO(p Parts) (any, error) {
	out := make([]string, p.len())
	for i := range out {
		y, mo, d, h, mi, s := civilFromParts(p.Days[i], p.Frac[i], 1e-6)
		out[i] = fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%09.6f", y, mo, d, h, mi, s)
	}
	return out, nil
}

func decodeISO(v any) (Parts, error) {
	values, ok := v.([]string)
	if !ok {
		return Parts{}, fmt.Errorf("iso: want []string, got %T", v)
	}
	p := Parts{Days: make([]float64, len(values)), Frac: make([]float64, len(values))}
	for i, s := range values {
		day, frac, err := parseISO(s)
		if err != nil {
			return Parts{}, err
		}
		p.Days[i], p.Frac[i] = day, frac
	}
	return p.normalize(), nil
}

func parseISO(s string) (day, frac float64, err error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	sep := strings.IndexAny(s, "T ")
	datePart := s
	timePart := ""
	if sep >= 0 {
		datePart, timePart = s[:sep], s[sep+1:]
	}
	dp := strings.Split(datePart, "-")
	if len(dp) != 3 {
		return 0, 0, fmt.Errorf("iso: bad date in %q", s)
	}
	year, err1 := strconv.Atoi(dp[0])
	month, err2 := strconv.Atoi(dp[1])
	dom, err3 := strconv.Atoi(dp[2])
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 || dom < 1 || dom > 31 {
		return 0, 0, fmt.Errorf("iso: bad date in %q", s)
	}
	var sod float64
	if timePart != "" {
		tp := strings.Split(timePart, ":")
		if len(tp) != 3 {
			return 0, 0, fmt.Errorf("iso: bad time in %q", s)
		}
		hour, err1 := strconv.Atoi(tp[0])
		min, err2 := strconv.Atoi(tp[1])
		sec, err3 := strconv.ParseFloat(tp[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || hour > 23 || min > 59 || sec < 0 || sec >= 61 {
			return 0, 0, fmt.Errorf("iso: bad time in %q", s)
		}
		sod = float64(hour)*3600 + float64(min)*60 + sec
	}
	return float64(calendar.MJDFromDate(year, month, dom)), sod / secsPerDay, nil
}

func encodeMJD(p Parts) (any, error) {
	out := make([]float64, p.len())
	for i := range out {
		out[i] = p.mjd(i)
	}
	return out, nil
}

func decodeMJD(v any) (Parts, error) {
	values, ok := v.([]float64)
	if !ok {
		return Parts{}, fmt.Errorf("mjd: want []float64, got %T", v)
	}
	p := Parts{Days: make([]float64, len(values)), Frac: make([]float64, len(values))}
	for i, m := range values {
		p.Days[i], p.Frac[i] = split(m)
	}
	return p, nil
}

func encodeJD(p Parts) (any, error) {
	out := make([]float64, p.len())
	for i := range out {
		out[i] = p.mjd(i) + mjdToJD
	}
	return out, nil
}

func decodeJD(v any) (Parts, error) {
	values, ok := v.([]float64)
	if !ok {
		return Parts{}, fmt.Errorf("jd: want []float64, got %T", v)
	}
	mjd := make([]float64, len(values))
	for i, jd := range values {
		mjd[i] = jd - mjdToJD
	}
	return decodeMJD(mjd)
}

// GPSWeekSow is the payload of the gpsweeksow format: week counts and
// seconds of week relative to the GPS epoch 1980-01-06. Encoding a value in
// a scale other than gps yields week/sow of that scale's reading, which is
// only the conventional GPS week number when the scale is gps.
type GPSWeekSow struct {
	Week []int
	Sow  []float64
}

func encodeGPSWeekSow(p Parts) (any, error) {
	out := GPSWeekSow{Week: make([]int, p.len()), Sow: make([]float64, p.len())}
	for i := range out.Week {
		days := p.Days[i] - gpsEpochMJD
		week := math.Floor(days / 7)
		out.Week[i] = int(week)
		out.Sow[i] = (days-week*7)*secsPerDay + p.Frac[i]*secsPerDay
	}
	return out, nil
}

func decodeGPSWeekSow(v any) (Parts, error) {
	ws, ok := v.(GPSWeekSow)
	if !ok {
		return Parts{}, fmt.Errorf("gpsweeksow: want GPSWeekSow, got %T", v)
	}
	if len(ws.Week) != len(ws.Sow) {
		return Parts{}, &registry.LengthMismatchError{What: "gps week/sow", Want: len(ws.Week), Got: len(ws.Sow)}
	}
	p := Parts{Days: make([]float64, len(ws.Week)), Frac: make([]float64, len(ws.Week))}
	for i := range ws.Week {
		p.Days[i] = gpsEpochMJD + float64(ws.Week[i]*7)
		p.Frac[i] = ws.Sow[i] / secsPerDay
	}
	return p.normalize(), nil
}

// YearDoySod is the payload of the yeardoysod format: year, ordinal day of
// year (1-based), and seconds of day.
type YearDoySod struct {
	Year []int
	Doy  []int
	Sod  []float64
}

func encodeYearDoySod(p Parts) (any, error) {
	out := YearDoySod{
		Year: make([]int, p.len()),
		Doy:  make([]int, p.len()),
		Sod:  make([]float64, p.len()),
	}
	for i := range out.Year {
		y, mo, d, h, mi, s := civilFromParts(p.Days[i], p.Frac[i], 0)
		out.Year[i] = y
		out.Doy[i] = calendar.DayOfYear(y, mo, d)
		out.Sod[i] = float64(h)*3600 + float64(mi)*60 + s
	}
	return out, nil
}

func decodeYearDoySod(v any) (Parts, error) {
	yds, ok := v.(YearDoySod)
	if !ok {
		return Parts{}, fmt.Errorf("yeardoysod: want YearDoySod, got %T", v)
	}
	if len(yds.Year) != len(yds.Doy) || len(yds.Year) != len(yds.Sod) {
		return Parts{}, &registry.LengthMismatchError{What: "year/doy/sod", Want: len(yds.Year), Got: len(yds.Doy)}
	}
	p := Parts{Days: make([]float64, len(yds.Year)), Frac: make([]float64, len(yds.Year))}
	for i := range yds.Year {
		if yds.Doy[i] < 1 || yds.Doy[i] > calendar.DaysInYear(yds.Year[i]) {
			return Parts{}, fmt.Errorf("yeardoysod: day of year %d out of range for %d", yds.Doy[i], yds.Year[i])
		}
		p.Days[i] = float64(calendar.MJDFromDate(yds.Year[i], 1, 1) + yds.Doy[i] - 1)
		p.Frac[i] = yds.Sod[i] / secsPerDay
	}
	return p.normalize(), nil
}

// encodeDecimalYear expresses each epoch as year + elapsed/length using the
// calendar length of that year (365 or 366 days). Leap seconds are ignored.
func encodeDecimalYear(p Parts) (any, error) {
	out := make([]float64, p.len())
	for i := range out {
		y, _, _, _, _, _ := civilFromParts(p.Days[i], p.Frac[i], 0)
		jan1 := float64(calendar.MJDFromDate(y, 1, 1))
		elapsed := (p.Days[i] - jan1) + p.Frac[i]
		out[i] = float64(y) + elapsed/float64(calendar.DaysInYear(y))
	}
	return out, nil
}

func decodeDecimalYear(v any) (Parts, error) {
	values, ok := v.([]float64)
	if !ok {
		return Parts{}, fmt.Errorf("decimalyear: want []float64, got %T", v)
	}
	p := Parts{Days: make([]float64, len(values)), Frac: make([]float64, len(values))}
	for i, dy := range values {
		y := int(math.Floor(dy))
		elapsed := (dy - float64(y)) * float64(calendar.DaysInYear(y))
		day, frac := split(elapsed)
		p.Days[i] = float64(calendar.MJDFromDate(y, 1, 1)) + day
		p.Frac[i] = frac
	}
	return p.normalize(), nil
}

// encodeYearVars produces the calendar naming variables consumers use to
// build file paths and identifiers, at whole-second precision.
func encodeYearVars(p Parts) (any, error) {
	out := make([]map[string]string, p.len())
	for i := range out {
		y, mo, d, h, mi, s := civilFromParts(p.Days[i], p.Frac[i], 1)
		out[i] = map[string]string{
			"yyyy": fmt.Sprintf("%04d", y),
			"yy":   fmt.Sprintf("%02d", y%100),
			"mm":   fmt.Sprintf("%02d", mo),
			"dd":   fmt.Sprintf("%02d", d),
			"doy":  fmt.Sprintf("%03d", calendar.DayOfYear(y, mo, d)),
			"hh":   fmt.Sprintf("%02d", h),
			"min":  fmt.Sprintf("%02d", mi),
			"sec":  fmt.Sprintf("%02.0f", s),
		}
	}
	return out, nil
}

func decodeYearVars(v any) (Parts, error) {
	values, ok := v.([]map[string]string)
	if !ok {
		return Parts{}, fmt.Errorf("yearvars: want []map[string]string, got %T", v)
	}
	p := Parts{Days: make([]float64, len(values)), Frac: make([]float64, len(values))}
	for i, vars := range values {
		get := func(key string) (int, error) {
			s, ok := vars[key]
			if !ok {
				return 0, fmt.Errorf("yearvars: missing %q", key)
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0, fmt.Errorf("yearvars: bad %q: %w", key, err)
			}
			return n, nil
		}
		y, err := get("yyyy")
		if err != nil {
			return Parts{}, err
		}
		mo, err := get("mm")
		if err != nil {
			return Parts{}, err
		}
		d, err := get("dd")
		if err != nil {
			return Parts{}, err
		}
		var sod int
		for _, part := range []struct {
			key  string
			mult int
		}{{"hh", 3600}, {"min", 60}, {"sec", 1}} {
			if _, ok := vars[part.key]; !ok {
				continue
			}
			n, err := get(part.key)
			if err != nil {
				return Parts{}, err
			}
			sod += n * part.mult
		}
		p.Days[i] = float64(calendar.MJDFromDate(y, mo, d))
		p.Frac[i] = float64(sod) / secsPerDay
	}
	return p.normalize(), nil
}
