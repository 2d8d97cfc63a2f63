package hosel

import (
	"fmt"
	"math"
)

//////
// Acquisition scoring.
//////

// RatioScore computes the density-ratio acquisition score of point.
//
// How it works:
// - Scores the single point under the good and the bad density model
// - Returns good / bad as the ratio, smaller is better
// - Uncertainty is always 0, no variance is estimated for this scorer
//
// Parameters:
// - point: Configuration to score
// - good: Density model fit on good outcomes
// - bad: Density model fit on bad outcomes
//
// Returns:
// - ScoreResult: Ratio and (zero) uncertainty
// - error: ErrDivisionByZero when the bad score is 0, ErrNonFiniteScore when
// the ratio is NaN or infinite, or the wrapped model error
//
// Example:
//
//	res, err := RatioScore(Configuration{3, 2}, good, bad)
//	if errors.Is(err, ErrDivisionByZero) {
//	    // abort this round
//	}
//
// Note: both models typically report mean log-likelihoods, which are
// negative. Then a point dense under good (score near 0) and sparse under bad
// (large negative score) yields a small ratio.
func RatioScore(point Configuration, good, bad DensityModel) (ScoreResult, error) {
	if good == nil || bad == nil {
		return ScoreResult{}, ErrNilModel
	}

	points := []Configuration{point}

	goodScore, err := good.Score(points)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("good model score: %w", err)
	}

	badScore, err := bad.Score(points)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("bad model score: %w", err)
	}

	if badScore == 0 {
		return ScoreResult{}, fmt.Errorf("%w at %v", ErrDivisionByZero, point)
	}

	ratio := goodScore / badScore
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return ScoreResult{}, fmt.Errorf("%w: %v / %v at %v", ErrNonFiniteScore, goodScore, badScore, point)
	}

	return ScoreResult{Ratio: ratio, Uncertainty: 0}, nil
}

// NewRatioScorer binds RatioScore to a pair of density models.
func NewRatioScorer(good, bad DensityModel) Scorer {
	return func(point Configuration) (ScoreResult, error) {
		return RatioScore(point, good, bad)
	}
}

//////
// Available acquisition criteria.
// Each one maps a score and its uncertainty to the value the optimizer
// minimises.
//////

// LowestMu ranks points by their predicted score alone. This is the default
// criterion of LocalSearchOptimizer and the one reported as "lm".
func LowestMu(mean, _ float64, _ AcquisitionParams) float64 {
	return mean
}

// UCB implements the (lower) confidence bound criterion.
//
// How it works:
// - Subtracts Beta standard deviations from the predicted score
// - Lower values are better
// - With the density ratio scorer the variance is 0, so UCB equals LowestMu
//
// Example:
//
//	params := AcquisitionParams{Beta: 2.0}
//	value := UCB(0.5, 0.2, params)
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(variance)
}

// ThompsonSampling draws one sample from N(mean, variance).
//
// Warning:
// - Always initialize params.RandomState before using this function
// - Don't share RandomState between concurrent optimizations.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	return mean + math.Sqrt(variance)*params.RandomState.NormFloat64()
}
