package hosel

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// dimensionSampler draws a uniform value for a single dimension.
type dimensionSampler func(r *rand.Rand) float64

// samplerFor picks the uniform sampler that matches the dimension type.
func samplerFor(d Dimension) dimensionSampler {
	switch d.Type {
	case Integer:
		lo, hi := int64(math.Ceil(d.Min)), int64(math.Floor(d.Max))

		return func(r *rand.Rand) float64 {
			return float64(randIntInclusive(r, lo, hi))
		}
	case Discrete:
		choices := append([]float64(nil), d.Choices...)

		return func(r *rand.Rand) float64 {
			return choices[r.Intn(len(choices))]
		}
	default:
		lo, hi := d.Min, d.Max

		return func(r *rand.Rand) float64 {
			return lo + r.Float64()*(hi-lo)
		}
	}
}

// ConstraintSampler draws random configurations that satisfy a
// ConstraintSpec.
//
// Constrained dimensions are drawn jointly by a SummationSampler so their sum
// lands in [Lower, Upper]. Every other dimension is drawn independently and
// uniformly within its own bounds.
//
// Thread safety:
// - Safe for concurrent use; the random source is guarded by a mutex
//
// Usage example:
//
//	sampler, err := NewConstraintSampler(
//	    ConstraintSpec{Lower: 5, Upper: 5, Indices: []int{0, 1}},
//	    dims,
//	    WithSeed(42),
//	)
//	if err != nil {
//	    return err
//	}
//
//	point, ok := sampler.Sample()
//	if !ok {
//	    // No feasible draw this time. Retry or fall back.
//	}
type ConstraintSampler struct {
	spec       ConstraintSpec
	dims       []Dimension
	subset     []Dimension
	samplers   []dimensionSampler
	constraint map[int]bool
	summation  SummationSampler

	rngMu sync.Mutex
	rng   *rand.Rand
}

// SamplerOption configures a ConstraintSampler.
type SamplerOption func(*ConstraintSampler)

// WithSeed seeds the sampler's random source.
func WithSeed(seed int64) SamplerOption {
	return func(s *ConstraintSampler) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand sets the sampler's random source. The sampler takes ownership of r.
func WithRand(r *rand.Rand) SamplerOption {
	return func(s *ConstraintSampler) {
		s.rng = r
	}
}

// WithSummationSampler replaces the generator used for the constrained subset.
func WithSummationSampler(ss SummationSampler) SamplerOption {
	return func(s *ConstraintSampler) {
		s.summation = ss
	}
}

// Spec returns the constraint the sampler enforces.
func (s *ConstraintSampler) Spec() ConstraintSpec {
	return s.spec
}

// Sample draws one configuration.
//
// Returns:
// - Configuration: One value per dimension, in order
// - bool: false when the constrained subset had no feasible draw this time
//
// No retries happen here beyond those of the SummationSampler; retry policy
// belongs to the caller. With an inactive spec Sample always succeeds.
func (s *ConstraintSampler) Sample() (Configuration, bool) {
	out := make(Configuration, len(s.dims))

	if s.spec.Active() {
		values, ok := s.summation.Rand(s.subset, s.spec.Lower, s.spec.Upper)
		if !ok {
			return nil, false
		}

		for i, idx := range s.spec.Indices {
			out[idx] = values[i]
		}
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	for i, draw := range s.samplers {
		if s.constraint[i] {
			continue
		}

		out[i] = draw(s.rng)
	}

	return out, true
}

// SampleN draws up to maxDraws times and returns the feasible configurations,
// at most n of them.
func (s *ConstraintSampler) SampleN(n, maxDraws int) []Configuration {
	out := make([]Configuration, 0, n)

	for draw := 0; draw < maxDraws && len(out) < n; draw++ {
		if c, ok := s.Sample(); ok {
			out = append(out, c)
		}
	}

	return out
}

//////
// Factory.
//////

// NewConstraintSampler builds a sampler for dims under spec.
//
// Returns:
// - ErrInvalidDimension if a dimension descriptor is malformed
// - ErrInvalidConstraint or ErrIndexOutOfRange if spec does not fit dims
//
// Defaults:
// - Random source seeded from the current time
// - Summation sampler from NewSummationSampler, sharing the random source
// seed but not the instance
func NewConstraintSampler(spec ConstraintSpec, dims []Dimension, opts ...SamplerOption) (*ConstraintSampler, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}

	if err := spec.Validate(dims); err != nil {
		return nil, err
	}

	s := &ConstraintSampler{
		spec:       ConstraintSpec{Lower: spec.Lower, Upper: spec.Upper, Indices: append([]int(nil), spec.Indices...)},
		dims:       append([]Dimension(nil), dims...),
		constraint: make(map[int]bool, len(spec.Indices)),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if s.summation == nil {
		s.summation = NewSummationSampler(rand.New(rand.NewSource(s.rng.Int63())), DefaultSummationRetries)
	}

	for _, idx := range s.spec.Indices {
		s.subset = append(s.subset, s.dims[idx])
		s.constraint[idx] = true
	}

	s.samplers = make([]dimensionSampler, len(s.dims))
	for i, d := range s.dims {
		s.samplers[i] = samplerFor(d)
	}

	return s, nil
}
