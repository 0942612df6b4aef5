package position

import (
	"sync"

	"github.com/signalsfoundry/geodesy/ellipsoid"
	"github.com/signalsfoundry/geodesy/registry"
)

// PosVel is an ordered sequence of N 6-vectors (position and velocity) in a
// single coordinate system, with the same immutability and per-instance
// caching contract as Position.
type PosVel struct {
	system registry.Tag
	pay    payload

	mu    sync.Mutex
	cache map[registry.Tag]*PosVel
}

// NewPosVel constructs a PosVel from N rows of 6 components expressed in the
// given system. A zero ellipsoid selects GRS80. Rows are copied.
func NewPosVel(system registry.Tag, ell ellipsoid.Ellipsoid, rows [][]float64) (*PosVel, error) {
	if _, err := PosVels.Lookup(system); err != nil {
		return nil, err
	}
	if err := checkRows("position/velocity row", rows, 6); err != nil {
		return nil, err
	}
	if ell.IsZero() {
		ell = ellipsoid.GRS80
	}
	return &PosVel{system: system, pay: payload{ell: ell, rows: cloneRows(rows)}}, nil
}

// System returns the coordinate system tag the value is expressed in.
func (p *PosVel) System() registry.Tag { return p.system }

// Ellipsoid returns the reference ellipsoid.
func (p *PosVel) Ellipsoid() ellipsoid.Ellipsoid { return p.pay.ell }

// Len returns the number of elements.
func (p *PosVel) Len() int { return len(p.pay.rows) }

// Unit returns the per-component unit strings of the current system.
func (p *PosVel) Unit() []string {
	sys, err := PosVels.Lookup(p.system)
	if err != nil {
		return nil
	}
	return sys.Units
}

// Data returns a copy of the raw rows in the current system.
func (p *PosVel) Data() [][]float64 { return cloneRows(p.pay.rows) }

// Position returns the position triplets as a Position value. Only defined
// for Cartesian rows; element systems (kepler) have no positional prefix.
func (p *PosVel) Position() (*Position, error) {
	if p.system != TRS {
		return nil, &registry.TagMismatchError{Family: Positions.Family(), A: p.system, B: TRS}
	}
	rows := make([][]float64, p.Len())
	for i, row := range p.pay.rows {
		rows[i] = append([]float64(nil), row[:3]...)
	}
	return &Position{system: TRS, pay: payload{ell: p.pay.ell, rows: rows}}, nil
}

// At returns the same elements expressed in another system, converting
// through the registered edge graph. Results are cached on the instance.
func (p *PosVel) At(system registry.Tag) (*PosVel, error) {
	if system == p.system {
		return p, nil
	}

	p.mu.Lock()
	if cached, ok := p.cache[system]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	pay, err := PosVels.Convert(p.pay, p.system, system)
	if err != nil {
		return nil, err
	}
	out := &PosVel{system: system, pay: pay}

	p.mu.Lock()
	if p.cache == nil {
		p.cache = make(map[registry.Tag]*PosVel)
	}
	p.cache[system] = out
	p.mu.Unlock()
	return out, nil
}

// Index returns the single element at position i, preserving system and
// ellipsoid.
func (p *PosVel) Index(i int) *PosVel {
	return &PosVel{system: p.system, pay: payload{ell: p.pay.ell, rows: cloneRows(p.pay.rows[i : i+1])}}
}

// Slice returns elements [lo, hi), preserving system and ellipsoid.
func (p *PosVel) Slice(lo, hi int) *PosVel {
	return &PosVel{system: p.system, pay: payload{ell: p.pay.ell, rows: cloneRows(p.pay.rows[lo:hi])}}
}

// Sub returns the elementwise difference p - ref as a PosVelDelta whose
// reference is ref. Both values must carry the same system tag.
func (p *PosVel) Sub(ref *PosVel) (*PosVelDelta, error) {
	if p.system != ref.system {
		return nil, &registry.TagMismatchError{Family: PosVels.Family(), A: p.system, B: ref.system}
	}
	if p.Len() != ref.Len() {
		return nil, &registry.LengthMismatchError{What: "position/velocity difference", Want: p.Len(), Got: ref.Len()}
	}
	return newPosVelDelta(p.system, subRows(p.pay.rows, ref.pay.rows), ref)
}

// Add returns a new absolute PosVel shifted by the delta, which must be
// expressed in the same system and have matching length.
func (p *PosVel) Add(d *PosVelDelta) (*PosVel, error) {
	if p.system != d.system {
		return nil, &registry.TagMismatchError{Family: PosVels.Family(), A: p.system, B: d.system}
	}
	if p.Len() != d.Len() {
		return nil, &registry.LengthMismatchError{What: "position/velocity shift", Want: p.Len(), Got: d.Len()}
	}
	return &PosVel{system: p.system, pay: payload{ell: p.pay.ell, rows: addRows(p.pay.rows, d.pay.rows)}}, nil
}

// PosVelDelta is an ordered sequence of N relative 6-vectors defined against
// a reference absolute PosVel of matching length. The orbital frame system
// (acr) derives its rotation from the reference state.
type PosVelDelta struct {
	system registry.Tag
	pay    payload
	ref    *PosVel

	mu    sync.Mutex
	cache map[registry.Tag]*PosVelDelta
}

// NewPosVelDelta constructs a delta from N rows of 6 components expressed in
// the given system about the reference.
func NewPosVelDelta(system registry.Tag, rows [][]float64, ref *PosVel) (*PosVelDelta, error) {
	if err := lookupEither(PosVelDeltas, PosVels, system); err != nil {
		return nil, err
	}
	if err := checkRows("position/velocity delta row", rows, 6); err != nil {
		return nil, err
	}
	if len(rows) != ref.Len() {
		return nil, &registry.LengthMismatchError{What: "position/velocity delta reference", Want: len(rows), Got: ref.Len()}
	}
	return newPosVelDelta(system, cloneRows(rows), ref)
}

func newPosVelDelta(system registry.Tag, rows [][]float64, ref *PosVel) (*PosVelDelta, error) {
	refTRS, err := ref.At(TRS)
	if err != nil {
		return nil, err
	}
	return &PosVelDelta{
		system: system,
		pay:    payload{ell: ref.pay.ell, rows: rows, ref: refTRS.pay.rows},
		ref:    ref,
	}, nil
}

// System returns the coordinate system tag the delta is expressed in.
func (d *PosVelDelta) System() registry.Tag { return d.system }

// Reference returns the absolute value the delta is defined against.
func (d *PosVelDelta) Reference() *PosVel { return d.ref }

// Len returns the number of elements.
func (d *PosVelDelta) Len() int { return len(d.pay.rows) }

// Unit returns the per-component unit strings of the current system.
func (d *PosVelDelta) Unit() []string {
	if sys, err := PosVelDeltas.Lookup(d.system); err == nil {
		return sys.Units
	}
	if sys, err := PosVels.Lookup(d.system); err == nil {
		return sys.Units
	}
	return nil
}

// Data returns a copy of the raw rows in the current system.
func (d *PosVelDelta) Data() [][]float64 { return cloneRows(d.pay.rows) }

// At returns the delta expressed in another system, with the same
// trs-canonicalized routing as PositionDelta.At: delta-family systems use
// the delta edge graph, absolute-only systems go through
// add-convert-subtract against the reference.
func (d *PosVelDelta) At(system registry.Tag) (*PosVelDelta, error) {
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
	out, err := newPosVelDelta(system, rows, d.ref)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.cache == nil {
		d.cache = make(map[registry.Tag]*PosVelDelta)
	}
	d.cache[system] = out
	d.mu.Unlock()
	return out, nil
}

func (d *PosVelDelta) convert(target registry.Tag) ([][]float64, error) {
	if err := lookupEither(PosVelDeltas, PosVels, target); err != nil {
		return nil, err
	}

	rows := d.pay.rows
	if d.system != TRS {
		var err error
		if _, derr := PosVelDeltas.Lookup(d.system); derr == nil {
			pay, cerr := PosVelDeltas.Convert(d.pay, d.system, TRS)
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
	if _, derr := PosVelDeltas.Lookup(target); derr == nil {
		pay, err := PosVelDeltas.Convert(payload{ell: d.pay.ell, rows: rows, ref: d.pay.ref}, TRS, target)
		if err != nil {
			return nil, err
		}
		return pay.rows, nil
	}
	return d.viaAbsolute(TRS, target, rows)
}

func (d *PosVelDelta) viaAbsolute(from, to registry.Tag, rows [][]float64) ([][]float64, error) {
	refFrom, err := d.ref.At(from)
	if err != nil {
		return nil, err
	}
	abs := payload{ell: d.pay.ell, rows: addRows(refFrom.pay.rows, rows)}
	absTo, err := PosVels.Convert(abs, from, to)
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
func (d *PosVelDelta) Index(i int) *PosVelDelta {
	out, _ := newPosVelDelta(d.system, cloneRows(d.pay.rows[i:i+1]), d.ref.Index(i))
	return out
}

// Slice returns elements [lo, hi), preserving system, ellipsoid, and the
// corresponding reference elements.
func (d *PosVelDelta) Slice(lo, hi int) *PosVelDelta {
	out, _ := newPosVelDelta(d.system, cloneRows(d.pay.rows[lo:hi]), d.ref.Slice(lo, hi))
	return out
}
