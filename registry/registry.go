// Package registry implements the named-system conversion framework shared
// by the epoch and position value types: a table of named systems, the
// direct conversion edges declared between them, and a dispatcher that
// composes edges into conversion paths.
//
// A Registry is populated once during initialization and is read-only
// afterward in normal operation; tests may Reset it as a serialized setup
// step.
package registry

import (
	"sync"
	"time"
)

// Tag names a registered system, scale, or format. Identity is by name; the
// registry is the single source of truth for which tags exist.
type Tag string

// System describes one registered system: its tag and the physical unit
// string for each component of the payload.
type System struct {
	Tag   Tag
	Desc  string
	Units []string
}

// Edge is a directed, named conversion between two systems plus the pure
// function that applies it to a raw payload. Absence of a reverse edge is
// legal; most builtin edges are paired.
type Edge[P any] struct {
	From, To Tag
	Apply    func(P) (P, error)
}

// Observer receives instrumentation callbacks from a Registry. The zero
// observer (nil) disables instrumentation; the core never imports a metrics
// stack directly.
type Observer interface {
	// ObserveConversion is called once per Convert with the wall time the
	// composed path took and the error it returned, if any.
	ObserveConversion(family string, from, to Tag, elapsed time.Duration, err error)
	// ObservePathLookup is called once per path resolution; cached reports
	// whether the (from, to) pair was already memoized.
	ObservePathLookup(family string, cached bool)
}

// Registry holds the systems and edges of one conversion family (time
// scales, position systems, ...), generic over the family's raw payload
// type. All methods are safe for concurrent use.
type Registry[P any] struct {
	family string

	mu      sync.RWMutex
	systems map[Tag]System
	order   []Tag
	edges   map[Tag][]Edge[P] // per source tag, in registration order
	paths   map[pathKey][]Edge[P]
	obs     Observer
}

type pathKey struct {
	from, to Tag
}

// New constructs an empty registry for the named family.
func New[P any](family string) *Registry[P] {
	r := &Registry[P]{family: family}
	r.reset()
	return r
}

func (r *Registry[P]) reset() {
	r.systems = make(map[Tag]System)
	r.order = nil
	r.edges = make(map[Tag][]Edge[P])
	r.paths = make(map[pathKey][]Edge[P])
}

// Family returns the family name the registry was created with.
func (r *Registry[P]) Family() string { return r.family }

// Register adds one named system plus its direct conversion edges. Edges may
// reference tags that are registered later; dangling endpoints are detected
// at conversion time, not here. Re-registering a tag is an error unless the
// descriptor is identical, in which case the call is an idempotent no-op and
// the edges are ignored.
func (r *Registry[P]) Register(sys System, edges ...Edge[P]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.systems[sys.Tag]; ok {
		if sameSystem(existing, sys) {
			return nil
		}
		return &DuplicateSystemError{Family: r.family, Tag: sys.Tag}
	}

	r.systems[sys.Tag] = sys
	r.order = append(r.order, sys.Tag)
	for _, e := range edges {
		r.edges[e.From] = append(r.edges[e.From], e)
	}
	// New edges can shorten or create paths; drop the memo.
	r.paths = make(map[pathKey][]Edge[P])
	return nil
}

// MustRegister is Register for static initialization tables, where a
// registration failure is a programming error.
func (r *Registry[P]) MustRegister(sys System, edges ...Edge[P]) {
	if err := r.Register(sys, edges...); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for tag, or an UnknownSystemError listing
// all known tags.
func (r *Registry[P]) Lookup(tag Tag) (System, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sys, ok := r.systems[tag]
	if !ok {
		return System{}, &UnknownSystemError{Family: r.family, Tag: tag, Known: r.tagsLocked()}
	}
	return sys, nil
}

// Tags returns all registered tags in registration order.
func (r *Registry[P]) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tagsLocked()
}

func (r *Registry[P]) tagsLocked() []Tag {
	tags := make([]Tag, len(r.order))
	copy(tags, r.order)
	return tags
}

// SetObserver installs an instrumentation hook. Passing nil disables
// instrumentation.
func (r *Registry[P]) SetObserver(obs Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = obs
}

// Reset clears all registered systems, edges, and memoized paths. It exists
// for tests that need a fresh registry and must not run concurrently with
// conversions.
func (r *Registry[P]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

func sameSystem(a, b System) bool {
	if a.Tag != b.Tag || a.Desc != b.Desc || len(a.Units) != len(b.Units) {
		return false
	}
	for i := range a.Units {
		if a.Units[i] != b.Units[i] {
			return false
		}
	}
	return true
}
