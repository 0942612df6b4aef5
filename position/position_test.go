package position

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/geodesy/ellipsoid"
	"github.com/signalsfoundry/geodesy/registry"
)

func TestNewPositionValidation(t *testing.T) {
	if _, err := NewPosition("barycentric", ellipsoid.GRS80, nil); err == nil {
		t.Errorf("unknown system accepted")
	} else {
		var unknown *registry.UnknownSystemError
		if !errors.As(err, &unknown) {
			t.Errorf("got %v, want UnknownSystemError", err)
		}
	}

	_, err := FromTRS(ellipsoid.GRS80, [][]float64{{1, 2}})
	var lm *registry.LengthMismatchError
	if !errors.As(err, &lm) {
		t.Errorf("got %v, want LengthMismatchError for short row", err)
	}
}

func TestZeroEllipsoidDefaultsToGRS80(t *testing.T) {
	p, err := FromTRS(ellipsoid.Ellipsoid{}, [][]float64{{6378137, 0, 0}})
	if err != nil {
		t.Fatalf("FromTRS: %v", err)
	}
	if p.Ellipsoid().Name != "GRS80" {
		t.Errorf("default ellipsoid = %q, want GRS80", p.Ellipsoid().Name)
	}
}

func TestPositionConversionIsCachedAndPure(t *testing.T) {
	rows := [][]float64{{3148244.690, 597997.517, 5496192.542}}
	p, _ := FromTRS(ellipsoid.GRS80, rows)
	first, err := p.At(LLH)
	if err != nil {
		t.Fatalf("At(llh): %v", err)
	}
	second, _ := p.At(LLH)
	if first != second {
		t.Errorf("repeated At(llh) returned a new instance")
	}
	if same, _ := p.At(TRS); same != p {
		t.Errorf("At(own system) did not return the receiver")
	}
	if got := p.Data()[0]; got[0] != rows[0][0] {
		t.Errorf("receiver mutated by conversion")
	}
}

func TestUnitPerSystem(t *testing.T) {
	p, _ := FromTRS(ellipsoid.GRS80, [][]float64{{6378137, 0, 0}})
	if u := p.Unit(); u[0] != "meter" {
		t.Errorf("trs unit = %v", u)
	}
	llh, _ := p.At(LLH)
	if u := llh.Unit(); u[0] != "radian" || u[2] != "meter" {
		t.Errorf("llh unit = %v", u)
	}
}

func TestSubRequiresMatchingSystem(t *testing.T) {
	a, _ := FromTRS(ellipsoid.GRS80, [][]float64{{6378137, 0, 0}})
	llh, _ := a.At(LLH)
	_, err := a.Sub(llh)
	var mismatch *registry.TagMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want TagMismatchError", err)
	}
}

// equator point: east is +y, north is +z, up is +x.
func equatorRef(t *testing.T) *Position {
	t.Helper()
	p, err := FromTRS(ellipsoid.GRS80, [][]float64{{6378137, 0, 0}})
	if err != nil {
		t.Fatalf("FromTRS: %v", err)
	}
	return p
}

func TestENURotationAtEquator(t *testing.T) {
	ref := equatorRef(t)
	d, err := NewPositionDelta(TRS, [][]float64{{10, 100, 50}}, ref)
	if err != nil {
		t.Fatalf("NewPositionDelta: %v", err)
	}
	enu, err := d.At(ENU)
	if err != nil {
		t.Fatalf("At(enu): %v", err)
	}
	got := enu.Data()[0]
	want := []float64{100, 50, 10}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("enu[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	back, err := enu.At(TRS)
	if err != nil {
		t.Fatalf("At(trs): %v", err)
	}
	orig := back.Data()[0]
	for i, want := range []float64{10, 100, 50} {
		if math.Abs(orig[i]-want) > 1e-9 {
			t.Errorf("round trip trs[%d] = %v, want %v", i, orig[i], want)
		}
	}
}

func TestDeltaMatchesAbsoluteDifference(t *testing.T) {
	// The delta of two nearby points, converted to enu, must equal the
	// rotation of their trs difference regardless of construction order.
	ref := equatorRef(t)
	moved, err := FromTRS(ellipsoid.GRS80, [][]float64{{6378137 + 5, -30, 80}})
	if err != nil {
		t.Fatalf("FromTRS: %v", err)
	}
	d, err := moved.Sub(ref)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	enu, err := d.At(ENU)
	if err != nil {
		t.Fatalf("At(enu): %v", err)
	}
	got := enu.Data()[0]
	want := []float64{-30, 80, 5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("enu[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDeltaFallsBackThroughAbsoluteFamily(t *testing.T) {
	// llh is registered only for the absolute family, so the delta must
	// route add-convert-subtract through the reference and come back intact.
	ref := equatorRef(t)
	d, err := NewPositionDelta(TRS, [][]float64{{10, 100, 50}}, ref)
	if err != nil {
		t.Fatalf("NewPositionDelta: %v", err)
	}
	llh, err := d.At(LLH)
	if err != nil {
		t.Fatalf("At(llh): %v", err)
	}
	if llh.System() != LLH {
		t.Fatalf("system = %s", llh.System())
	}
	back, err := llh.At(TRS)
	if err != nil {
		t.Fatalf("At(trs): %v", err)
	}
	got := back.Data()[0]
	for i, want := range []float64{10, 100, 50} {
		if math.Abs(got[i]-want) > 1e-6 {
			t.Errorf("round trip trs[%d] = %v, want %v", i, got[i], want)
		}
	}
	// Sanity on the llh delta itself: 100 m east at the equator is about
	// 100/a radians of longitude.
	dlon := llh.Data()[0][1]
	if math.Abs(dlon-100/6378137.0) > 1e-9 {
		t.Errorf("longitude delta = %v rad", dlon)
	}
}

func TestDeltaConstructionValidation(t *testing.T) {
	ref := equatorRef(t)
	_, err := NewPositionDelta(TRS, [][]float64{{1, 2, 3}, {4, 5, 6}}, ref)
	var lm *registry.LengthMismatchError
	if !errors.As(err, &lm) {
		t.Errorf("got %v, want LengthMismatchError for reference length", err)
	}
	_, err = NewPositionDelta("barycentric", [][]float64{{1, 2, 3}}, ref)
	var unknown *registry.UnknownSystemError
	if !errors.As(err, &unknown) {
		t.Errorf("got %v, want UnknownSystemError", err)
	}
}

func TestDeltaIndexSlicePreserveReference(t *testing.T) {
	ref, err := FromTRS(ellipsoid.GRS80, [][]float64{
		{6378137, 0, 0},
		{0, 6378137, 0},
		{4075580, 931855, 4801568},
	})
	if err != nil {
		t.Fatalf("FromTRS: %v", err)
	}
	d, err := NewPositionDelta(TRS, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, ref)
	if err != nil {
		t.Fatalf("NewPositionDelta: %v", err)
	}
	one := d.Index(1)
	if one.Len() != 1 || one.System() != TRS || one.Reference().Len() != 1 {
		t.Fatalf("Index: len %d system %s ref len %d", one.Len(), one.System(), one.Reference().Len())
	}
	if got := one.Reference().Data()[0][1]; got != 6378137 {
		t.Errorf("Index did not slice the reference: %v", got)
	}
	sub := d.Slice(1, 3)
	if sub.Len() != 2 || sub.Reference().Len() != 2 {
		t.Errorf("Slice: len %d ref len %d", sub.Len(), sub.Reference().Len())
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	ref := equatorRef(t)
	moved, _ := FromTRS(ellipsoid.GRS80, [][]float64{{6378137 + 5, -30, 80}})
	d, err := moved.Sub(ref)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	back, err := ref.Add(d)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	got := back.Data()[0]
	want := moved.Data()[0]
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d: %v != %v", i, got[i], want[i])
		}
	}
}
