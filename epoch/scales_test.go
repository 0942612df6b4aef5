package epoch

import (
	"math"
	"math/rand"
	"testing"
)

// randomEpochs returns n epochs spread over 1972..2035, with the time of day
// kept away from midnight so no sample sits inside a leap-second boundary.
func randomEpochs(t *testing.T, n int, seed int64) *Time {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	days := make([]float64, n)
	frac := make([]float64, n)
	for i := range days {
		days[i] = float64(41500 + rng.Intn(23000))
		frac[i] = 0.2 + 0.6*rng.Float64()
	}
	tt, err := FromMJDParts(UTC, days, frac)
	if err != nil {
		t.Fatalf("FromMJDParts: %v", err)
	}
	return tt
}

func TestScaleGraphFullyConnected(t *testing.T) {
	tags := Scales.Tags()
	for _, from := range tags {
		for _, to := range tags {
			if _, err := Scales.FindPath(from, to); err != nil {
				t.Errorf("no path %s -> %s: %v", from, to, err)
			}
		}
	}
}

func TestScaleRoundTripsWithinNanosecond(t *testing.T) {
	orig := randomEpochs(t, 200, 1)
	tags := Scales.Tags()
	for _, via := range tags {
		if via == UTC {
			continue
		}
		conv, err := orig.At(via)
		if err != nil {
			t.Fatalf("convert utc -> %s: %v", via, err)
		}
		back, err := conv.At(UTC)
		if err != nil {
			t.Fatalf("convert %s -> utc: %v", via, err)
		}
		for i, diff := range secondsBetween(back, orig) {
			if math.Abs(diff) > 1e-9 {
				t.Fatalf("round trip utc -> %s -> utc drifted %.3g s at epoch %d (mjd %v)",
					via, diff, i, orig.MJD()[i])
			}
		}
	}
}

func TestUTCToGPSAppliesLeapOffset(t *testing.T) {
	// 2009-11-02: TAI-UTC = 34 s, so GPS-UTC = 34 - 19 = 15 s.
	utc, err := FromDateTime(UTC, 2009, 11, 2, 0, 0, 0)
	if err != nil {
		t.Fatalf("FromDateTime: %v", err)
	}
	gps, err := utc.At(GPS)
	if err != nil {
		t.Fatalf("At(gps): %v", err)
	}
	y, mo, d, h, mi, sec := gps.DateTime(0)
	if y != 2009 || mo != 11 || d != 2 || h != 0 || mi != 0 || math.Abs(sec-15) > 1e-9 {
		t.Errorf("2009-11-02 UTC in gps = %04d-%02d-%02d %02d:%02d:%012.9f, want seconds = 15",
			y, mo, d, h, mi, sec)
	}
}

func TestTAIMinusUTCByEra(t *testing.T) {
	cases := []struct {
		year, month, day int
		offset           float64
	}{
		{1980, 1, 6, 19},
		{1999, 1, 1, 32},
		{2012, 7, 1, 35},
		{2017, 6, 1, 37},
	}
	for _, c := range cases {
		utc, err := FromDateTime(UTC, c.year, c.month, c.day, 12, 0, 0)
		if err != nil {
			t.Fatalf("FromDateTime: %v", err)
		}
		tai, err := utc.At(TAI)
		if err != nil {
			t.Fatalf("At(tai): %v", err)
		}
		got := secondsBetween(tai, &Time{scale: TAI, parts: utc.parts})[0]
		if math.Abs(got-c.offset) > 1e-9 {
			t.Errorf("TAI-UTC at %d-%02d-%02d = %v, want %v", c.year, c.month, c.day, got, c.offset)
		}
	}
}

func TestTTMinusTAIIsFixed(t *testing.T) {
	tai, err := FromDateTime(TAI, 2020, 5, 17, 6, 30, 0)
	if err != nil {
		t.Fatalf("FromDateTime: %v", err)
	}
	tt, err := tai.At(TT)
	if err != nil {
		t.Fatalf("At(tt): %v", err)
	}
	got := secondsBetween(tt, &Time{scale: TT, parts: tai.parts})[0]
	if math.Abs(got-32.184) > 1e-9 {
		t.Errorf("TT-TAI = %v, want 32.184", got)
	}
}

func TestTCGGainsOnTT(t *testing.T) {
	// About 2.2 ms per year; check the sign and magnitude over ~43 years.
	tt, err := FromDateTime(TT, 2020, 1, 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("FromDateTime: %v", err)
	}
	tcg, err := tt.At(TCG)
	if err != nil {
		t.Fatalf("At(tcg): %v", err)
	}
	gain := secondsBetween(tcg, &Time{scale: TCG, parts: tt.parts})[0]
	if gain < 0.9 || gain > 1.1 {
		t.Errorf("TCG-TT in 2020 = %v s, want roughly 0.95 s", gain)
	}
}

func TestDUT1ModelFeedsUT1Edge(t *testing.T) {
	SetDUT1Model(func(float64) float64 { return -0.2 })
	defer SetDUT1Model(nil)

	utc, err := FromDateTime(UTC, 2015, 3, 1, 12, 0, 0)
	if err != nil {
		t.Fatalf("FromDateTime: %v", err)
	}
	ut1, err := utc.At(UT1)
	if err != nil {
		t.Fatalf("At(ut1): %v", err)
	}
	got := secondsBetween(ut1, &Time{scale: UT1, parts: utc.parts})[0]
	if math.Abs(got+0.2) > 1e-9 {
		t.Errorf("UT1-UTC = %v, want -0.2", got)
	}
	back, err := ut1.At(UTC)
	if err != nil {
		t.Fatalf("At(utc): %v", err)
	}
	if diff := secondsBetween(back, utc)[0]; math.Abs(diff) > 1e-9 {
		t.Errorf("ut1 round trip drifted %v s", diff)
	}
}
