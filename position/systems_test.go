package position

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/geodesy/ellipsoid"
	"github.com/signalsfoundry/geodesy/registry"
)

func TestSystemGraphsFullyConnected(t *testing.T) {
	families := []*registry.Registry[payload]{Positions, PosVels, PositionDeltas, PosVelDeltas}
	for _, reg := range families {
		tags := reg.Tags()
		for _, from := range tags {
			for _, to := range tags {
				if _, err := reg.FindPath(from, to); err != nil {
					t.Errorf("%s: no path %s -> %s: %v", reg.Family(), from, to, err)
				}
			}
		}
	}
}

func TestTRSToLLHRoundTrip(t *testing.T) {
	rows := [][]float64{
		{3148244.690, 597997.517, 5496192.542},
		{4075580.0, 931855.0, 4801568.0},
		{-2694045.0, -4293642.0, 3857878.0},
	}
	p, err := FromTRS(ellipsoid.GRS80, rows)
	if err != nil {
		t.Fatalf("FromTRS: %v", err)
	}
	llh, err := p.At(LLH)
	if err != nil {
		t.Fatalf("At(llh): %v", err)
	}
	back, err := llh.At(TRS)
	if err != nil {
		t.Fatalf("At(trs): %v", err)
	}
	got := back.Data()
	for i, want := range rows {
		for j := range want {
			if diff := math.Abs(got[i][j] - want[j]); diff > 1e-6 {
				t.Errorf("row %d component %d off by %v m", i, j, diff)
			}
		}
	}
}

func TestLLHOfKnownPoint(t *testing.T) {
	// A point built from closed-form llh->trs must come back out.
	lat, lon, h := 1.04, 0.188, 412.5
	src, err := NewPosition(LLH, ellipsoid.GRS80, [][]float64{{lat, lon, h}})
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	trs, err := src.At(TRS)
	if err != nil {
		t.Fatalf("At(trs): %v", err)
	}
	llh, err := trs.At(LLH)
	if err != nil {
		t.Fatalf("At(llh): %v", err)
	}
	got := llh.Data()[0]
	if math.Abs(got[0]-lat) > 1e-11 || math.Abs(got[1]-lon) > 1e-11 {
		t.Errorf("lat/lon = %v/%v, want %v/%v", got[0], got[1], lat, lon)
	}
	if math.Abs(got[2]-h) > 1e-5 {
		t.Errorf("height = %v, want %v", got[2], h)
	}
}

func TestLLHAtPoles(t *testing.T) {
	b := ellipsoid.GRS80.B()
	p, err := FromTRS(ellipsoid.GRS80, [][]float64{
		{0, 0, b + 100},
		{0, 0, -(b + 250)},
	})
	if err != nil {
		t.Fatalf("FromTRS: %v", err)
	}
	llh, err := p.At(LLH)
	if err != nil {
		t.Fatalf("At(llh): %v", err)
	}
	rows := llh.Data()
	if math.Abs(rows[0][0]-math.Pi/2) > 1e-12 || math.Abs(rows[0][2]-100) > 1e-6 {
		t.Errorf("north pole: lat %v height %v", rows[0][0], rows[0][2])
	}
	if math.Abs(rows[1][0]+math.Pi/2) > 1e-12 || math.Abs(rows[1][2]-250) > 1e-6 {
		t.Errorf("south pole: lat %v height %v", rows[1][0], rows[1][2])
	}
}

func TestGeocenterIsDegenerate(t *testing.T) {
	p, err := FromTRS(ellipsoid.GRS80, [][]float64{
		{3148244.690, 597997.517, 5496192.542},
		{0, 0, 0},
	})
	if err != nil {
		t.Fatalf("FromTRS: %v", err)
	}
	_, err = p.At(LLH)
	var deg *registry.DegenerateInputError
	if !errors.As(err, &deg) {
		t.Fatalf("got %v, want DegenerateInputError", err)
	}
	if len(deg.Indices) != 1 || deg.Indices[0] != 1 {
		t.Errorf("Indices = %v, want [1]", deg.Indices)
	}
}

func TestEllipsoidParameterChangesLLH(t *testing.T) {
	rows := [][]float64{{3148244.690, 597997.517, 5496192.542}}
	grs, _ := FromTRS(ellipsoid.GRS80, rows)
	iers, _ := FromTRS(ellipsoid.IERS2010, rows)
	a, _ := grs.At(LLH)
	b, _ := iers.At(LLH)
	if a.Data()[0][2] == b.Data()[0][2] {
		t.Errorf("height identical across ellipsoids, parameters ignored")
	}
	if got := b.Ellipsoid().Name; got != ellipsoid.IERS2010.Name {
		t.Errorf("ellipsoid not carried through conversion: %q", got)
	}
}
