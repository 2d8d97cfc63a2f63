package hosel

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bowlScorer has its minimum at target.
func bowlScorer(target Configuration) Scorer {
	return func(p Configuration) (ScoreResult, error) {
		var sum float64
		for i := range p {
			d := p[i] - target[i]
			sum += d * d
		}

		return ScoreResult{Ratio: sum}, nil
	}
}

func TestLocalSearchFindsMinimum(t *testing.T) {
	dims := []Dimension{
		{Type: Integer, Min: 0, Max: 20},
		{Type: Continuous, Min: -1, Max: 1},
		{Type: Discrete, Choices: []float64{8, 1, 4, 16}},
	}

	opt := DefaultLocalSearchOptimizer()

	best, err := opt.Optimize(
		context.Background(),
		bowlScorer(Configuration{13, 0.25, 4}),
		dims,
		[]Configuration{{0, -1, 16}, {20, 1, 1}},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, 13.0, best.Configuration[0])
	assert.InDelta(t, 0.25, best.Configuration[1], 1e-3)
	assert.Equal(t, 4.0, best.Configuration[2])
	assert.InDelta(t, 0, best.Score.Ratio, 1e-6)
}

func TestLocalSearchSnapsSeeds(t *testing.T) {
	dims := []Dimension{
		{Type: Integer, Min: 0, Max: 10},
		{Type: Discrete, Choices: []float64{1, 5}},
	}

	var seen []Configuration

	scorer := func(p Configuration) (ScoreResult, error) {
		seen = append(seen, p.Clone())

		return ScoreResult{Ratio: 1}, nil
	}

	opt := &LocalSearchOptimizer{MaxIterations: 1}

	best, err := opt.Optimize(context.Background(), scorer, dims, []Configuration{{12.7, 3.4}}, nil)
	require.NoError(t, err)

	assert.Equal(t, Configuration{10, 5}, seen[0])
	assert.Equal(t, Configuration{10, 5}, best.Configuration)
}

func TestLocalSearchNeverReturnsInfeasible(t *testing.T) {
	dims := intDims(3, 0, 10)
	spec := ConstraintSpec{Lower: 4, Upper: 6, Indices: []int{0, 1}}

	opt := DefaultLocalSearchOptimizer()

	// Unconstrained minimum (0, 0, 0) violates the constraint.
	best, err := opt.Optimize(
		context.Background(),
		bowlScorer(Configuration{0, 0, 0}),
		dims,
		[]Configuration{{10, 10, 10}, {3, 2, 7}},
		spec.Predicate(),
	)
	require.NoError(t, err)

	assert.True(t, spec.IsFeasible(best.Configuration))
	assert.Equal(t, 4.0, best.Configuration[0]+best.Configuration[1])
	assert.Equal(t, 0.0, best.Configuration[2])
}

func TestLocalSearchInfeasibleSeedsAreNotScored(t *testing.T) {
	dims := intDims(2, 0, 10)
	reject := func(Configuration) bool { return false }

	calls := 0
	scorer := func(Configuration) (ScoreResult, error) {
		calls++

		return ScoreResult{}, nil
	}

	_, err := DefaultLocalSearchOptimizer().Optimize(context.Background(), scorer, dims, []Configuration{{1, 1}}, reject)

	assert.ErrorIs(t, err, ErrNoFeasibleConfiguration)
	assert.Zero(t, calls)
}

func TestLocalSearchPropagatesScorerError(t *testing.T) {
	scorer := func(Configuration) (ScoreResult, error) {
		return ScoreResult{}, ErrDivisionByZero
	}

	_, err := DefaultLocalSearchOptimizer().Optimize(context.Background(), scorer, intDims(1, 0, 3), []Configuration{{1}}, nil)

	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestLocalSearchInputErrors(t *testing.T) {
	opt := DefaultLocalSearchOptimizer()
	ctx := context.Background()
	scorer := bowlScorer(Configuration{0})

	_, err := opt.Optimize(ctx, scorer, intDims(1, 0, 3), nil, nil)
	assert.ErrorIs(t, err, ErrNoStartingPoints)

	_, err = opt.Optimize(ctx, scorer, intDims(1, 0, 3), []Configuration{{1, 2}}, nil)
	assert.Error(t, err)

	_, err = opt.Optimize(ctx, nil, intDims(1, 0, 3), []Configuration{{1}}, nil)
	assert.Error(t, err)

	_, err = opt.Optimize(ctx, scorer, []Dimension{{Type: Discrete}}, []Configuration{{1}}, nil)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestLocalSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultLocalSearchOptimizer().Optimize(ctx, bowlScorer(Configuration{3}), intDims(1, 0, 10), []Configuration{{0}}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalSearchParallelMatchesSequential(t *testing.T) {
	dims := intDims(2, 0, 30)
	starts := []Configuration{{0, 0}, {30, 30}, {5, 25}, {25, 5}, {15, 15}}
	scorer := bowlScorer(Configuration{17, 4})

	seq, err := DefaultLocalSearchOptimizer().Optimize(context.Background(), scorer, dims, starts, nil)
	require.NoError(t, err)

	par := DefaultLocalSearchOptimizer()
	par.Parallelism = 4

	got, err := par.Optimize(context.Background(), scorer, dims, starts, nil)
	require.NoError(t, err)

	assert.Equal(t, seq, got)
	assert.Equal(t, Configuration{17, 4}, got.Configuration)
}

func TestLocalSearchTiesKeepEarliestSeed(t *testing.T) {
	flat := func(Configuration) (ScoreResult, error) { return ScoreResult{Ratio: 1}, nil }

	best, err := DefaultLocalSearchOptimizer().Optimize(
		context.Background(), flat, intDims(1, 0, 10), []Configuration{{7}, {2}}, nil,
	)
	require.NoError(t, err)

	assert.Equal(t, Configuration{7}, best.Configuration)
}

func TestMove(t *testing.T) {
	intDim := Dimension{Type: Integer, Min: 0, Max: 10}
	assert.Equal(t, 5.0, move(intDim, 4, 0.3))
	assert.Equal(t, 3.0, move(intDim, 4, -0.3))
	assert.Equal(t, 10.0, move(intDim, 9, 4))

	disc := Dimension{Type: Discrete, Choices: []float64{1, 4, 8, 16}}
	assert.Equal(t, 8.0, move(disc, 4, 1))
	assert.Equal(t, 1.0, move(disc, 4, -3))

	cont := Dimension{Type: Continuous, Min: 0, Max: 1}
	assert.Equal(t, 1.0, move(cont, 0.9, 0.5))
	assert.InDelta(t, 0.4, move(cont, 0.5, -0.1), 1e-12)
}

func TestEvaluateMaxForInfeasible(t *testing.T) {
	o := *DefaultLocalSearchOptimizer()

	v, _, err := o.evaluate(bowlScorer(Configuration{0}), Configuration{1}, func(Configuration) bool { return false })
	require.NoError(t, err)

	assert.Equal(t, math.MaxFloat64, v)
}
