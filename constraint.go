package hosel

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Package-level validator instance for struct tag-based validation of
// dimensions, constraints and config files.
var validate = validator.New()

// ConstraintSpec is a linear sum constraint over a subset of dimensions: the
// values at Indices must sum into [Lower, Upper], both ends inclusive.
//
// A ConstraintSpec is a plain value. Build one per tuning job and hand it to
// NewConstraintSampler and the Selector; nothing is shared between rounds.
//
// An empty Indices set disables the constraint.
//
// Usage:
//
//	spec := ConstraintSpec{Lower: 5, Upper: 5, Indices: []int{0, 1}}
//	if err := spec.Validate(dims); err != nil {
//	    return err
//	}
//
//	ok := spec.IsFeasible(Configuration{2, 3, 9}) // true
type ConstraintSpec struct {
	// Lower is the inclusive lower bound of the sum.
	Lower float64 `yaml:"lower" json:"lower"`

	// Upper is the inclusive upper bound of the sum.
	Upper float64 `yaml:"upper" json:"upper"`

	// Indices are the constrained dimension positions.
	Indices []int `yaml:"indices" json:"indices" validate:"unique,dive,gte=0"`
}

// Active reports whether the constraint restricts anything.
func (s ConstraintSpec) Active() bool {
	return len(s.Indices) > 0
}

// Validate checks the spec on its own and against the dimensions it will be
// applied to.
//
// Returns:
// - ErrInvalidConstraint when Lower > Upper or indices repeat or are negative
// - ErrIndexOutOfRange when an index has no matching dimension
//
// An inactive spec is always valid; its bounds are never read.
func (s ConstraintSpec) Validate(dims []Dimension) error {
	if !s.Active() {
		return nil
	}

	if s.Lower > s.Upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrInvalidConstraint, s.Lower, s.Upper)
	}

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConstraint, err)
	}

	for _, idx := range s.Indices {
		if idx >= len(dims) {
			return fmt.Errorf("%w: index %d, %d dimensions", ErrIndexOutOfRange, idx, len(dims))
		}
	}

	return nil
}

// IsFeasible reports whether the constrained values of point sum into
// [Lower, Upper]. An inactive spec accepts every point.
//
// IsFeasible is pure: it never mutates point. It panics when an index is
// beyond the end of point; Validate catches that ahead of time.
func (s ConstraintSpec) IsFeasible(point Configuration) bool {
	if !s.Active() {
		return true
	}

	var sum float64
	for _, idx := range s.Indices {
		sum += point[idx]
	}

	return s.Lower <= sum && sum <= s.Upper
}

// Predicate returns IsFeasible as a Predicate, or nil when the spec is
// inactive.
func (s ConstraintSpec) Predicate() Predicate {
	if !s.Active() {
		return nil
	}

	// Detach from the caller's slice.
	spec := ConstraintSpec{Lower: s.Lower, Upper: s.Upper, Indices: append([]int(nil), s.Indices...)}

	return spec.IsFeasible
}

// Validate checks that a dimension descriptor is usable for sampling and
// snapping.
func (d Dimension) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidDimension, d.Name, err)
	}

	if d.Type == Discrete && len(d.Choices) == 0 {
		return fmt.Errorf("%w %q: no choices", ErrInvalidDimension, d.Name)
	}

	if d.Type != Discrete && d.Min > d.Max {
		return fmt.Errorf("%w %q: min %v > max %v", ErrInvalidDimension, d.Name, d.Min, d.Max)
	}

	if d.Type == Integer && math.Ceil(d.Min) > math.Floor(d.Max) {
		return fmt.Errorf("%w %q: no integer in [%v, %v]", ErrInvalidDimension, d.Name, d.Min, d.Max)
	}

	return nil
}

// ValidateDimensions validates every descriptor of a search space.
func ValidateDimensions(dims []Dimension) error {
	if len(dims) == 0 {
		return fmt.Errorf("%w: empty search space", ErrInvalidDimension)
	}

	for i := range dims {
		if err := dims[i].Validate(); err != nil {
			return fmt.Errorf("dimension %d: %w", i, err)
		}
	}

	return nil
}
