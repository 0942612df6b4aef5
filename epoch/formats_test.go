package epoch

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/signalsfoundry/geodesy/registry"
)

func TestYearVarsForKnownDate(t *testing.T) {
	v, err := FromDateTime(UTC, 2009, 11, 2, 0, 0, 0)
	if err != nil {
		t.Fatalf("FromDateTime: %v", err)
	}
	vars, err := v.YearVars()
	if err != nil {
		t.Fatalf("YearVars: %v", err)
	}
	want := map[string]string{
		"yyyy": "2009",
		"yy":   "09",
		"mm":   "11",
		"dd":   "02",
		"doy":  "306",
		"hh":   "00",
		"min":  "00",
		"sec":  "00",
	}
	for key, w := range want {
		if got := vars[0][key]; got != w {
			t.Errorf("yearvars[%q] = %q, want %q", key, got, w)
		}
	}
}

func TestISOEncodesCalendarDateTime(t *testing.T) {
	v, err := FromDateTime(UTC, 2009, 11, 2, 13, 45, 30.125)
	if err != nil {
		t.Fatalf("FromDateTime: %v", err)
	}
	iso, err := v.ISO()
	if err != nil {
		t.Fatalf("ISO: %v", err)
	}
	if iso[0] != "2009-11-02T13:45:30.125000" {
		t.Errorf("ISO = %q", iso[0])
	}
}

func TestISODecodeAcceptsVariants(t *testing.T) {
	inputs := []string{
		"2009-11-02T13:45:30.125000",
		"2009-11-02 13:45:30.125",
		"2009-11-02T13:45:30.125Z",
	}
	ref, _ := FromDateTime(UTC, 2009, 11, 2, 13, 45, 30.125)
	for _, in := range inputs {
		got, err := New(UTC, "iso", []string{in})
		if err != nil {
			t.Fatalf("New(iso, %q): %v", in, err)
		}
		if diff := secondsBetween(got, ref)[0]; math.Abs(diff) > 1e-6 {
			t.Errorf("iso %q differs from reference by %v s", in, diff)
		}
	}
}

func TestISODecodeRejectsMalformed(t *testing.T) {
	for _, in := range []string{"2009/11/02", "2009-13-02", "2009-11-02T25:00:00", "nonsense"} {
		if _, err := New(UTC, "iso", []string{in}); err == nil {
			t.Errorf("iso accepted %q", in)
		}
	}
}

func TestFormatsRoundTripWithinPrecision(t *testing.T) {
	ref := randomEpochs(t, 40, 21)

	// precision each format documents, in seconds.
	cases := []struct {
		format string
		tol    float64
	}{
		{"iso", 1e-6},
		{"mjd", 1e-3}, // single float collapses the two parts
		{"jd", 1e-2},
		{"gpsweeksow", 1e-6},
		{"yeardoysod", 1e-6},
		{"decimalyear", 1e-2},
		{"yearvars", 1.0},
	}
	for _, tc := range cases {
		encoded, err := ref.Encode(tc.format)
		if err != nil {
			t.Fatalf("%s: encode: %v", tc.format, err)
		}
		back, err := New(UTC, tc.format, encoded)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.format, err)
		}
		for i, diff := range secondsBetween(back, ref) {
			if math.Abs(diff) > tc.tol {
				t.Errorf("%s: epoch %d off by %v s (tolerance %v)", tc.format, i, diff, tc.tol)
			}
		}
	}
}

func TestUnknownFormatListsKnownNames(t *testing.T) {
	_, err := LookupFormat("besselian")
	var unknown *registry.UnknownSystemError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownSystemError", err)
	}
	msg := err.Error()
	for _, name := range []string{"iso", "mjd", "gpsweeksow", "yearvars"} {
		if !strings.Contains(msg, name) {
			t.Errorf("error %q does not list format %q", msg, name)
		}
	}
}

func TestRegisterFormatRejectsDuplicate(t *testing.T) {
	err := RegisterFormat(Format{Name: "iso"})
	var dup *registry.DuplicateSystemError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want DuplicateSystemError", err)
	}
}

func TestDecodeRejectsWrongPayloadType(t *testing.T) {
	if _, err := New(UTC, "mjd", []string{"55137"}); err == nil {
		t.Errorf("mjd accepted []string")
	}
	if _, err := New(UTC, "iso", []float64{55137}); err == nil {
		t.Errorf("iso accepted []float64")
	}
}

func TestYearDoySodRejectsOutOfRangeDoy(t *testing.T) {
	_, err := New(UTC, "yeardoysod", YearDoySod{
		Year: []int{2009},
		Doy:  []int{366}, // 2009 is not a leap year
		Sod:  []float64{0},
	})
	if err == nil {
		t.Errorf("doy 366 accepted for 2009")
	}
}

func TestDecimalYearMidpoints(t *testing.T) {
	v, err := New(UTC, "decimalyear", []float64{2009.0, 2010.0})
	if err != nil {
		t.Fatalf("New(decimalyear): %v", err)
	}
	y, mo, d, _, _, _ := v.DateTime(0)
	if y != 2009 || mo != 1 || d != 1 {
		t.Errorf("2009.0 = %04d-%02d-%02d, want 2009-01-01", y, mo, d)
	}
	dy, err := v.DecimalYear()
	if err != nil {
		t.Fatalf("DecimalYear: %v", err)
	}
	for i, want := range []float64{2009.0, 2010.0} {
		if math.Abs(dy[i]-want) > 1e-9 {
			t.Errorf("decimalyear[%d] = %v, want %v", i, dy[i], want)
		}
	}
}
