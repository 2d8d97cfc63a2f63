package hosel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sourcegraph/conc/pool"
)

// LocalSearchOptimizer is the default AcquisitionOptimizer. From every seed
// it runs a bounded compass search (one dimension at a time, step halving on
// stall) and keeps the lowest feasible end point.
//
// How it works:
//  1. Each seed is snapped into bounds and onto its value type
//  2. Points rejected by the predicate score math.MaxFloat64, so the search
//     walks away from them but can never return one
//  3. Every other point is scored and passed through Criterion
//  4. Seeds are searched on a bounded goroutine pool; ties between seeds go
//     to the earlier seed
//
// The zero value is usable: zero fields take the defaults of
// DefaultLocalSearchOptimizer.
//
// Thread safety:
//   - With Parallelism > 1 the scorer (and so both density models) must be
//     safe for concurrent use, and Params.RandomState must not be used.
type LocalSearchOptimizer struct {
	// Criterion maps (mu, sigma) to the minimised value. Default LowestMu.
	Criterion AcquisitionFunc

	// Params are handed to Criterion.
	Params AcquisitionParams

	// MaxIterations caps the number of sweeps per seed.
	// Recommended range: 20-200
	MaxIterations int

	// InitialStep is the first step size as a fraction of each dimension's
	// range. Integer and discrete dimensions always step by at least 1.
	InitialStep float64

	// Tolerance stops continuous dimensions once their step falls below this
	// fraction of their range.
	Tolerance float64

	// Parallelism bounds the number of seeds searched at once.
	Parallelism int
}

// seedResult is the end point of a search started from one seed.
type seedResult struct {
	index    int
	point    Configuration
	value    float64
	score    ScoreResult
	feasible bool
}

// Optimize implements AcquisitionOptimizer.
//
// Returns:
// - ErrNoStartingPoints when starts is empty
// - ErrNoFeasibleConfiguration when no search ended on a feasible point
// - The first scorer error, unchanged apart from wrapping
// - ctx.Err() when ctx is done before the search finishes
func (o *LocalSearchOptimizer) Optimize(
	ctx context.Context,
	scorer Scorer,
	dims []Dimension,
	starts []Configuration,
	predicate Predicate,
) (Candidate, error) {
	if scorer == nil {
		return Candidate{}, errors.New("scorer is required")
	}

	if len(starts) == 0 {
		return Candidate{}, ErrNoStartingPoints
	}

	if err := ValidateDimensions(dims); err != nil {
		return Candidate{}, err
	}

	for i, s := range starts {
		if len(s) != len(dims) {
			return Candidate{}, fmt.Errorf("starting point %d has %d values, want %d", i, len(s), len(dims))
		}
	}

	cfg := o.withDefaults()
	space := sortedChoices(dims)

	p := pool.NewWithResults[seedResult]().
		WithContext(ctx).
		WithFirstError().
		WithCancelOnError().
		WithMaxGoroutines(cfg.Parallelism)

	for i, start := range starts {
		i, start := i, start

		p.Go(func(ctx context.Context) (seedResult, error) {
			return cfg.search(ctx, i, start, scorer, space, predicate)
		})
	}

	results, err := p.Wait()
	if err != nil {
		return Candidate{}, err
	}

	var best *seedResult

	for i := range results {
		r := &results[i]
		if !r.feasible {
			continue
		}

		if best == nil || r.value < best.value || (r.value == best.value && r.index < best.index) {
			best = r
		}
	}

	if best == nil {
		return Candidate{}, ErrNoFeasibleConfiguration
	}

	return Candidate{Configuration: best.point, Score: best.score}, nil
}

// search runs the compass search from one seed.
func (o LocalSearchOptimizer) search(
	ctx context.Context,
	index int,
	start Configuration,
	scorer Scorer,
	dims []Dimension,
	predicate Predicate,
) (seedResult, error) {
	x := MatchValueTypes(start, dims)

	fx, sx, err := o.evaluate(scorer, x, predicate)
	if err != nil {
		return seedResult{}, err
	}

	steps := make([]float64, len(dims))
	for d, dim := range dims {
		steps[d] = o.InitialStep * (dim.Upper() - dim.Lower())
		if dim.Type != Continuous {
			steps[d] = math.Max(1, steps[d])
		}
	}

	for iter := 0; iter < o.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return seedResult{}, err
		}

		improved := false

		for d, dim := range dims {
			if !o.stepping(dim, steps[d]) {
				continue
			}

			for _, dir := range [2]float64{1, -1} {
				y := x.Clone()
				y[d] = move(dim, x[d], dir*steps[d])

				if y[d] == x[d] {
					continue
				}

				fy, sy, err := o.evaluate(scorer, y, predicate)
				if err != nil {
					return seedResult{}, err
				}

				if fy < fx {
					x, fx, sx = y, fy, sy
					improved = true

					break
				}
			}
		}

		if improved {
			continue
		}

		converged := true

		for d, dim := range dims {
			steps[d] /= 2
			if o.stepping(dim, steps[d]) {
				converged = false
			}
		}

		if converged {
			break
		}
	}

	return seedResult{
		index:    index,
		point:    x,
		value:    fx,
		score:    sx,
		feasible: predicate == nil || predicate(x),
	}, nil
}

// evaluate returns the minimised value at x. Infeasible points are not
// scored.
func (o LocalSearchOptimizer) evaluate(scorer Scorer, x Configuration, predicate Predicate) (float64, ScoreResult, error) {
	if predicate != nil && !predicate(x) {
		return math.MaxFloat64, ScoreResult{}, nil
	}

	sr, err := scorer(x)
	if err != nil {
		return 0, ScoreResult{}, err
	}

	return o.Criterion(sr.Ratio, sr.Uncertainty, o.Params), sr, nil
}

// stepping reports whether a dimension still moves with step s. Integer and
// discrete steps round to at least 1, so halving always passes through a
// unit step before they stop.
func (o LocalSearchOptimizer) stepping(d Dimension, s float64) bool {
	if d.Type == Continuous {
		return s > 0 && s >= o.Tolerance*(d.Max-d.Min)
	}

	return s >= 0.5
}

func (o *LocalSearchOptimizer) withDefaults() LocalSearchOptimizer {
	cfg := *o
	def := DefaultLocalSearchOptimizer()

	if cfg.Criterion == nil {
		cfg.Criterion = def.Criterion
	}

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}

	if cfg.InitialStep <= 0 {
		cfg.InitialStep = def.InitialStep
	}

	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}

	if cfg.Parallelism <= 0 {
		cfg.Parallelism = def.Parallelism
	}

	return cfg
}

// move shifts v by delta along d and snaps the result.
func move(d Dimension, v, delta float64) float64 {
	switch d.Type {
	case Integer:
		return MatchValueType(v+math.Copysign(math.Max(1, math.Round(math.Abs(delta))), delta), d)
	case Discrete:
		step := int(math.Max(1, math.Round(math.Abs(delta))))
		if delta < 0 {
			step = -step
		}

		idx := clamp(choiceIndex(v, d.Choices)+step, 0, len(d.Choices)-1)

		return d.Choices[idx]
	default:
		return MatchValueType(v+delta, d)
	}
}

// sortedChoices returns a copy of dims whose discrete choices are in
// ascending order, so index steps move monotonically.
func sortedChoices(dims []Dimension) []Dimension {
	out := make([]Dimension, len(dims))
	for i, d := range dims {
		out[i] = d
		if d.Type == Discrete {
			out[i].Choices = append([]float64(nil), d.Choices...)
			sort.Float64s(out[i].Choices)
		}
	}

	return out
}

//////
// Factory.
//////

// DefaultLocalSearchOptimizer returns an optimizer with the lowest-mu
// criterion, 100 sweeps per seed, a quarter-range first step, and one seed
// at a time.
func DefaultLocalSearchOptimizer() *LocalSearchOptimizer {
	return &LocalSearchOptimizer{
		Criterion:     LowestMu,
		MaxIterations: 100,
		InitialStep:   0.25,
		Tolerance:     1e-4,
		Parallelism:   1,
	}
}
