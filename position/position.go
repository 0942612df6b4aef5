package position

import (
	"sync"

	"github.com/signalsfoundry/geodesy/ellipsoid"
	"github.com/signalsfoundry/geodesy/registry"
)

// Position is an ordered sequence of N 3-vectors in a single coordinate
// system. It is immutable: every operation returns a new instance. Converted
// systems are cached per instance on first request.
type Position struct {
	system registry.Tag
	pay    payload

	mu    sync.Mutex
	cache map[registry.Tag]*Position
}

// NewPosition constructs a Position from N rows of 3 components expressed in
// the given system. A zero ellipsoid selects GRS80. Rows are copied.
func NewPosition(system registry.Tag, ell ellipsoid.Ellipsoid, rows [][]float64) (*Position, error) {
	if _, err := Positions.Lookup(system); err != nil {
		return nil, err
	}
	if err := checkRows("position row", rows, 3); err != nil {
		return nil, err
	}
	if ell.IsZero() {
		ell = ellipsoid.GRS80
	}
	return &Position{system: system, pay: payload{ell: ell, rows: cloneRows(rows)}}, nil
}

// FromTRS constructs a Position from Cartesian terrestrial rows in meters.
func FromTRS(ell ellipsoid.Ellipsoid, rows [][]float64) (*Position, error) {
	return NewPosition(TRS, ell, rows)
}

// System returns the coordinate system tag the value is expressed in.
func (p *Position) System() registry.Tag { return p.system }

// Ellipsoid returns the reference ellipsoid ellipsoidal conversions use.
func (p *Position) Ellipsoid() ellipsoid.Ellipsoid { return p.pay.ell }

// Len returns the number of elements.
func (p *Position) Len() int { return len(p.pay.rows) }

// Unit returns the per-component unit strings of the current system.
func (p *Position) Unit() []string {
	sys, err := Positions.Lookup(p.system)
	if err != nil {
		return nil
	}
	return sys.Units
}

// Data returns a copy of the raw rows in the current system.
func (p *Position) Data() [][]float64 { return cloneRows(p.pay.rows) }

// At returns the same elements expressed in another system, converting
// through the registered edge graph. Results are cached on the instance; the
// receiver is never modified.
func (p *Position) At(system registry.Tag) (*Position, error) {
	if system == p.system {
		return p, nil
	}

	p.mu.Lock()
	if cached, ok := p.cache[system]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	pay, err := Positions.Convert(p.pay, p.system, system)
	if err != nil {
		return nil, err
	}
	out := &Position{system: system, pay: pay}

	p.mu.Lock()
	if p.cache == nil {
		p.cache = make(map[registry.Tag]*Position)
	}
	p.cache[system] = out
	p.mu.Unlock()
	return out, nil
}

// Index returns the single element at position i, preserving system and
// ellipsoid.
func (p *Position) Index(i int) *Position {
	return &Position{system: p.system, pay: payload{
		ell:  p.pay.ell,
		rows: cloneRows(p.pay.rows[i : i+1]),
	}}
}

// Slice returns elements [lo, hi), preserving system and ellipsoid.
func (p *Position) Slice(lo, hi int) *Position {
	return &Position{system: p.system, pay: payload{
		ell:  p.pay.ell,
		rows: cloneRows(p.pay.rows[lo:hi]),
	}}
}

// Sub returns the elementwise difference p - ref as a PositionDelta whose
// reference is ref. Both values must carry the same system tag; combining
// across systems without an explicit conversion is a tag-discipline error.
func (p *Position) Sub(ref *Position) (*PositionDelta, error) {
	if p.system != ref.system {
		return nil, &registry.TagMismatchError{Family: Positions.Family(), A: p.system, B: ref.system}
	}
	if p.Len() != ref.Len() {
		return nil, &registry.LengthMismatchError{What: "position difference", Want: p.Len(), Got: ref.Len()}
	}
	return newPositionDelta(p.system, subRows(p.pay.rows, ref.pay.rows), ref)
}

// Add returns a new absolute Position shifted by the delta, which must be
// expressed in the same system and have matching length.
func (p *Position) Add(d *PositionDelta) (*Position, error) {
	if p.system != d.system {
		return nil, &registry.TagMismatchError{Family: Positions.Family(), A: p.system, B: d.system}
	}
	if p.Len() != d.Len() {
		return nil, &registry.LengthMismatchError{What: "position shift", Want: p.Len(), Got: d.Len()}
	}
	return &Position{system: p.system, pay: payload{ell: p.pay.ell, rows: addRows(p.pay.rows, d.pay.rows)}}, nil
}

// PositionDelta is an ordered sequence of N relative 3-vectors defined
// against a reference absolute Position of matching length. The reference is
// shared, not owned; the frame systems (enu) derive their rotations from it,
// and conversions to absolute-only systems go through add-convert-subtract
// against it.
type PositionDelta struct {
	system registry.Tag
	pay    payload
	ref    *Position

	mu    sync.Mutex
	cache map[registry.Tag]*PositionDelta
}

// NewPositionDelta constructs a delta from N rows of 3 components expressed
// in the given system about the reference.
func NewPositionDelta(system registry.Tag, rows [][]float64, ref *Position) (*PositionDelta, error) {
	if err := lookupEither(PositionDeltas, Positions, system); err != nil {
		return nil, err
	}
	if err := checkRows("position delta row", rows, 3); err != nil {
		return nil, err
	}
	if len(rows) != ref.Len() {
		return nil, &registry.LengthMismatchError{What: "position delta reference", Want: len(rows), Got: ref.Len()}
	}
	return newPositionDelta(system, cloneRows(rows), ref)
}

// newPositionDelta wires the reference's Cartesian rows into the payload so
// the frame edges can derive their rotations.
func newPositionDelta(system registry.Tag, rows [][]float64, ref *Position) (*PositionDelta, error) {
	refTRS, err := ref.At(TRS)
	if err != nil {
		return nil, err
	}
	return &PositionDelta{
		system: system,
		pay:    payload{ell: ref.pay.ell, rows: rows, ref: refTRS.pay.rows},
		ref:    ref,
	}, nil
}

// System returns the coordinate system tag the delta is expressed in.
func (d *PositionDelta) System() registry.Tag { return d.system }

// Reference returns the absolute value the delta is defined against.
func (d *PositionDelta) Reference() *Position { return d.ref }

// Len returns the number of elements.
func (d *PositionDelta) Len() int { return len(d.pay.rows) }

// Unit returns the per-component unit strings of the current system.
func (d *PositionDelta) Unit() []string {
	if sys, err := PositionDeltas.Lookup(d.system); err == nil {
		return sys.Units
	}
	if sys, err := Positions.Lookup(d.system); err == nil {
		return sys.Units
	}
	return nil
}

// Data returns a copy of the raw rows in the current system.
func (d *PositionDelta) Data() [][]float64 { return cloneRows(d.pay.rows) }

// At returns the delta expressed in another system. Systems registered for
// the delta family (trs, enu) convert through its edge graph; systems only
// the absolute family knows (llh) convert by forming reference + delta,
// converting the absolute values, and subtracting back. Results are cached
// on the instance.
func (d *PositionDelta) At(system registry.Tag) (*PositionDelta, error) {
	if system == d.system {
		return d, nil
	}

	d.mu.Lock()
	if cached, ok := d.cache[system]; ok {
		d.mu.Unlock()
		return cached, nil
	}
	d.mu.Unlock()

	rows, err := d.convert(system)
	if err != nil {
		return nil, err
	}
	out, err := newPositionDelta(system, rows, d.ref)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.cache == nil {
		d.cache = make(map[registry.Tag]*PositionDelta)
	}
	d.cache[system] = out
	d.mu.Unlock()
	return out, nil
}

// convert canonicalizes through trs: the delta graph and the
// add-convert-subtract fallback both have trs as their hub.
func (d *PositionDelta) convert(target registry.Tag) ([][]float64, error) {
	if err := lookupEither(PositionDeltas, Positions, target); err != nil {
		return nil, err
	}

	rows := d.pay.rows
	if d.system != TRS {
		var err error
		if _, derr := PositionDeltas.Lookup(d.system); derr == nil {
			pay, cerr := PositionDeltas.Convert(d.pay, d.system, TRS)
			if cerr != nil {
				return nil, cerr
			}
			rows = pay.rows
		} else if rows, err = d.viaAbsolute(d.system, TRS, rows); err != nil {
			return nil, err
		}
	}
	if target == TRS {
		return rows, nil
	}
	if _, derr := PositionDeltas.Lookup(target); derr == nil {
		pay, err := PositionDeltas.Convert(payload{ell: d.pay.ell, rows: rows, ref: d.pay.ref}, TRS, target)
		if err != nil {
			return nil, err
		}
		return pay.rows, nil
	}
	return d.viaAbsolute(TRS, target, rows)
}

// viaAbsolute converts a delta between systems the absolute family knows:
// reference + delta, convert, subtract the converted reference.
func (d *PositionDelta) viaAbsolute(from, to registry.Tag, rows [][]float64) ([][]float64, error) {
	refFrom, err := d.ref.At(from)
	if err != nil {
		return nil, err
	}
	abs := payload{ell: d.pay.ell, rows: addRows(refFrom.pay.rows, rows)}
	absTo, err := Positions.Convert(abs, from, to)
	if err != nil {
		return nil, err
	}
	refTo, err := d.ref.At(to)
	if err != nil {
		return nil, err
	}
	return subRows(absTo.rows, refTo.pay.rows), nil
}

// Index returns the single element at position i, preserving system,
// ellipsoid, and the corresponding reference element.
func (d *PositionDelta) Index(i int) *PositionDelta {
	out, _ := newPositionDelta(d.system, cloneRows(d.pay.rows[i:i+1]), d.ref.Index(i))
	return out
}

// Slice returns elements [lo, hi), preserving system, ellipsoid, and the
// corresponding reference elements.
func (d *PositionDelta) Slice(lo, hi int) *PositionDelta {
	out, _ := newPositionDelta(d.system, cloneRows(d.pay.rows[lo:hi]), d.ref.Slice(lo, hi))
	return out
}

// lookupEither resolves a tag against the delta registry first, then the
// absolute registry, so the error lists the delta family's known tags when
// neither knows it.
func lookupEither(delta, abs *registry.Registry[payload], tag registry.Tag) error {
	if _, err := delta.Lookup(tag); err == nil {
		return nil
	}
	if _, err := abs.Lookup(tag); err == nil {
		return nil
	}
	_, err := delta.Lookup(tag)
	return err
}
