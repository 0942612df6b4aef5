package registry

import (
	"fmt"
	"strings"
)

// UnknownSystemError reports a tag that was never registered. It lists the
// currently known tags so typos and missing builtins are diagnosable.
type UnknownSystemError struct {
	Family string
	Tag    Tag
	Known  []Tag
}

func (e *UnknownSystemError) Error() string {
	known := make([]string, len(e.Known))
	for i, t := range e.Known {
		known[i] = string(t)
	}
	return fmt.Sprintf("%s: unknown system %q (known: %s)",
		e.Family, e.Tag, strings.Join(known, ", "))
}

// UnknownConversionError reports that both tags are registered but no chain
// of edges connects them.
type UnknownConversionError struct {
	Family   string
	From, To Tag
}

func (e *UnknownConversionError) Error() string {
	return fmt.Sprintf("%s: no conversion registered from %q to %q", e.Family, e.From, e.To)
}

// DuplicateSystemError reports an attempt to re-register a tag with a
// different implementation.
type DuplicateSystemError struct {
	Family string
	Tag    Tag
}

func (e *DuplicateSystemError) Error() string {
	return fmt.Sprintf("%s: system %q already registered with a different implementation", e.Family, e.Tag)
}

// DegenerateInputError reports numeric input for which a registered
// conversion is mathematically undefined (pole, geocenter, circular or
// non-inclined orbit). Indices identifies the offending elements of the
// vectorized payload.
type DegenerateInputError struct {
	Conversion string
	Reason     string
	Indices    []int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input (%s) at indices %v", e.Conversion, e.Reason, e.Indices)
}

// TagMismatchError reports an attempt to combine (add, subtract, compare)
// two values carrying different tags without an explicit conversion step.
type TagMismatchError struct {
	Family string
	A, B   Tag
}

func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("%s: cannot combine values tagged %q and %q without conversion", e.Family, e.A, e.B)
}

// LengthMismatchError reports vectorized components of differing length N.
type LengthMismatchError struct {
	What      string
	Want, Got int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: length mismatch: want %d, got %d", e.What, e.Want, e.Got)
}
