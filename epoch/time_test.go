package epoch

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/geodesy/registry"
)

func TestFromMJDPartsRejectsLengthMismatch(t *testing.T) {
	_, err := FromMJDParts(UTC, []float64{55137}, []float64{0, 0.5})
	var lm *registry.LengthMismatchError
	if !errors.As(err, &lm) {
		t.Fatalf("got %v, want LengthMismatchError", err)
	}
}

func TestFromMJDPartsRejectsUnknownScale(t *testing.T) {
	_, err := FromMJDParts("sidereal", []float64{55137}, []float64{0})
	var unknown *registry.UnknownSystemError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownSystemError", err)
	}
}

func TestFromDateTimeRejectsBadClock(t *testing.T) {
	if _, err := FromDateTime(UTC, 2020, 1, 1, 24, 0, 0); err == nil {
		t.Errorf("hour 24 accepted")
	}
	if _, err := FromDateTime(UTC, 2020, 13, 1, 0, 0, 0); err == nil {
		t.Errorf("month 13 accepted")
	}
}

func TestTwoPartFactoryRoundTripsExactly(t *testing.T) {
	days := []float64{55137, 60000}
	frac := []float64{0.25, 0.999999999999}
	v, err := FromMJDParts(UTC, days, frac)
	if err != nil {
		t.Fatalf("FromMJDParts: %v", err)
	}
	gotDays, gotFrac := v.MJDParts()
	for i := range days {
		if gotDays[i] != days[i] || gotFrac[i] != frac[i] {
			t.Errorf("epoch %d: parts (%v, %v), want (%v, %v)", i, gotDays[i], gotFrac[i], days[i], frac[i])
		}
	}
}

func TestConversionIsCachedPerInstance(t *testing.T) {
	v := randomEpochs(t, 10, 7)
	first, err := v.At(TAI)
	if err != nil {
		t.Fatalf("At(tai): %v", err)
	}
	second, err := v.At(TAI)
	if err != nil {
		t.Fatalf("At(tai) again: %v", err)
	}
	if first != second {
		t.Errorf("second At(tai) returned a new instance, want the cached one")
	}
	if same, err := v.At(UTC); err != nil || same != v {
		t.Errorf("At(own scale) = (%v, %v), want the receiver unchanged", same, err)
	}
}

func TestConversionDoesNotMutateReceiver(t *testing.T) {
	v := randomEpochs(t, 5, 9)
	days, frac := v.MJDParts()
	if _, err := v.At(GPS); err != nil {
		t.Fatalf("At(gps): %v", err)
	}
	days2, frac2 := v.MJDParts()
	for i := range days {
		if days[i] != days2[i] || frac[i] != frac2[i] {
			t.Fatalf("receiver mutated at epoch %d", i)
		}
	}
	if v.Scale() != UTC {
		t.Errorf("receiver scale changed to %s", v.Scale())
	}
}

func TestSubAcrossScalesFailsWithTypedError(t *testing.T) {
	utc, _ := FromDateTime(UTC, 2020, 1, 1, 0, 0, 0)
	gps, _ := FromDateTime(GPS, 2020, 1, 1, 0, 0, 0)
	_, err := utc.Sub(gps)
	var mismatch *registry.TagMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want TagMismatchError", err)
	}
}

func TestSubAndAddAreInverse(t *testing.T) {
	a := randomEpochs(t, 50, 3)
	b := randomEpochs(t, 50, 4)
	d, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	back, err := b.Add(d)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	for i, diff := range secondsBetween(back, a) {
		if math.Abs(diff) > 1e-9 {
			t.Fatalf("b + (a-b) differs from a by %v s at epoch %d", diff, i)
		}
	}
}

func TestDeltaSecondsRoundTrip(t *testing.T) {
	secs := []float64{0, 1.5, -86400, 604800.000001}
	d := DeltaFromSeconds(secs)
	for i, got := range d.Seconds() {
		if math.Abs(got-secs[i]) > 1e-7 {
			t.Errorf("Seconds()[%d] = %v, want %v", i, got, secs[i])
		}
	}
	if d.Unit()[0] != "second" {
		t.Errorf("Delta unit = %v, want second", d.Unit())
	}
}

func TestIndexAndSlicePreserveScale(t *testing.T) {
	v := randomEpochs(t, 10, 11)
	one := v.Index(3)
	if one.Scale() != v.Scale() || one.Len() != 1 {
		t.Errorf("Index: scale %s len %d", one.Scale(), one.Len())
	}
	if one.MJD()[0] != v.MJD()[3] {
		t.Errorf("Index(3) = %v, want %v", one.MJD()[0], v.MJD()[3])
	}
	sub := v.Slice(2, 6)
	if sub.Scale() != v.Scale() || sub.Len() != 4 {
		t.Errorf("Slice: scale %s len %d", sub.Scale(), sub.Len())
	}
}

func TestFromGPSWeekSow(t *testing.T) {
	// Week 0, second 0 is the GPS epoch itself.
	v, err := FromGPSWeekSow([]int{0, 1560}, []float64{0, 172800})
	if err != nil {
		t.Fatalf("FromGPSWeekSow: %v", err)
	}
	y, mo, d, _, _, _ := v.DateTime(0)
	if y != 1980 || mo != 1 || d != 6 {
		t.Errorf("week 0 sow 0 = %04d-%02d-%02d, want 1980-01-06", y, mo, d)
	}
	ws, err := v.GPSWeekSow()
	if err != nil {
		t.Fatalf("GPSWeekSow: %v", err)
	}
	if ws.Week[1] != 1560 || math.Abs(ws.Sow[1]-172800) > 1e-6 {
		t.Errorf("week/sow round trip = %d/%v, want 1560/172800", ws.Week[1], ws.Sow[1])
	}
}

func TestNewFactoryDispatchesOnFormat(t *testing.T) {
	v, err := New(UTC, "mjd", []float64{55137.5})
	if err != nil {
		t.Fatalf("New(mjd): %v", err)
	}
	y, mo, d, h, _, _ := v.DateTime(0)
	if y != 2009 || mo != 11 || d != 2 || h != 12 {
		t.Errorf("New(mjd 55137.5) = %04d-%02d-%02d %02dh", y, mo, d, h)
	}

	_, err = New(UTC, "cuneiform", []float64{1})
	var unknown *registry.UnknownSystemError
	if !errors.As(err, &unknown) {
		t.Fatalf("New with unknown format: got %v, want UnknownSystemError", err)
	}
}
