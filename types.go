package hosel

import (
	"context"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

//////
// Const, vars, types.
//////

// DimensionType tags how values of a search dimension are drawn and snapped.
type DimensionType string

const (
	// Continuous dimensions take any real value in [Min, Max].
	Continuous DimensionType = "range_continuous"

	// Integer dimensions take any integer in [Min, Max].
	Integer DimensionType = "range_int"

	// Discrete dimensions take one of an enumerated set of numeric choices.
	Discrete DimensionType = "discrete_int"
)

// AcquisitionLowestMu is the acquisition function name reported for selections
// made by minimising the predicted score directly.
const AcquisitionLowestMu = "lm"

// Configuration is one candidate point in the search space. It holds exactly
// one value per Dimension, in the same order as the dimensions it was built
// for.
type Configuration []float64

// Clone returns an independent copy of c.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}

	out := make(Configuration, len(c))
	copy(out, c)

	return out
}

// Dimension describes one axis of the search space.
//
// Fields:
// - Name: Human readable name, only used for logging and config files
// - Type: Value-type tag (Continuous, Integer or Discrete)
// - Min, Max: Inclusive bounds for Continuous and Integer dimensions
// - Choices: Enumerated values for Discrete dimensions
//
// Usage:
//
//	dims := []Dimension{
//	    {Name: "batch_size", Type: Integer, Min: 16, Max: 256},
//	    {Name: "dropout", Type: Continuous, Min: 0, Max: 0.5},
//	    {Name: "layers", Type: Discrete, Choices: []float64{2, 4, 8}},
//	}
//
// Validation:
// - Min must be less than or equal to Max
// - Discrete dimensions need at least one choice
//
// Order is significant: configurations are positional tuples over the
// dimensions they were sampled for.
type Dimension struct {
	Name    string        `yaml:"name" json:"name"`
	Type    DimensionType `yaml:"type" json:"type" validate:"required,oneof=range_continuous range_int discrete_int"`
	Min     float64       `yaml:"min" json:"min"`
	Max     float64       `yaml:"max" json:"max"`
	Choices []float64     `yaml:"choices,omitempty" json:"choices,omitempty" validate:"required_if=Type discrete_int"`
}

// Lower returns the smallest value the dimension can take.
func (d Dimension) Lower() float64 {
	if d.Type == Discrete {
		lo := math.Inf(1)
		for _, c := range d.Choices {
			lo = math.Min(lo, c)
		}

		return lo
	}

	return d.Min
}

// Upper returns the largest value the dimension can take.
func (d Dimension) Upper() float64 {
	if d.Type == Discrete {
		hi := math.Inf(-1)
		for _, c := range d.Choices {
			hi = math.Max(hi, c)
		}

		return hi
	}

	return d.Max
}

// DensityModel is a fitted probability-density model over previously
// evaluated configurations. The selector uses two of them: one fit on "good"
// outcomes and one fit on "bad" outcomes.
//
// Score returns the aggregate likelihood (for example mean log-likelihood)
// of the given points. The selector always passes a single point.
//
// Sample draws n configurations from the model. Samples may fall outside the
// search bounds; callers snap them before use.
//
// Implementations are owned by the model-fitting side. When a selector runs
// seeds in parallel, both methods must be safe for concurrent use.
type DensityModel interface {
	Score(points []Configuration) (float64, error)
	Sample(n int) ([]Configuration, error)
}

// ScoreResult is the output of an acquisition scorer.
type ScoreResult struct {
	// Ratio is the acquisition value. Smaller is better.
	Ratio float64

	// Uncertainty is the variance estimate attached to Ratio. The density
	// ratio scorer does not estimate one and always reports 0.
	Uncertainty float64
}

// Scorer evaluates the acquisition score at a single configuration.
type Scorer func(point Configuration) (ScoreResult, error)

// Predicate reports whether a configuration satisfies a hard constraint.
// A nil Predicate accepts everything.
type Predicate func(point Configuration) bool

// Candidate is a configuration returned by an AcquisitionOptimizer together
// with its acquisition score.
type Candidate struct {
	Configuration Configuration
	Score         ScoreResult
}

// AcquisitionOptimizer searches the space described by dims for the
// configuration that minimises scorer, starting from every point in starts.
//
// When predicate is non-nil, every configuration the optimizer considers
// (seeds included) must satisfy it before it can be returned.
//
// Implementations may run alternative strategies (local search, random
// multi-start, nested Bayesian solvers); the selector only depends on this
// contract.
type AcquisitionOptimizer interface {
	Optimize(
		ctx context.Context,
		scorer Scorer,
		dims []Dimension,
		starts []Configuration,
		predicate Predicate,
	) (Candidate, error)
}

// Selection is the outcome of one selection round.
type Selection struct {
	// RoundID correlates log lines and progress updates of one round.
	RoundID uuid.UUID `json:"round_id"`

	// Configuration is the proposed next point to evaluate.
	Configuration Configuration `json:"hyperparameter"`

	// ExpectedMu is the acquisition score at Configuration.
	ExpectedMu float64 `json:"expected_mu"`

	// ExpectedSigma is the uncertainty attached to ExpectedMu.
	ExpectedSigma float64 `json:"expected_sigma"`

	// AcquisitionFunc names the criterion used, e.g. "lm".
	AcquisitionFunc string `json:"acquisition_func"`
}

// ProgressUpdate reports the state of a selection round.
type ProgressUpdate struct {
	// Phase is "Seeding", "Optimizing" or "Selected".
	Phase string

	// RoundID is the round this update belongs to.
	RoundID uuid.UUID

	// Seeds is the number of starting points handed to the optimizer.
	Seeds int

	// Configuration is the selected configuration, set in the "Selected" phase.
	Configuration Configuration

	// ExpectedMu is the acquisition score of Configuration.
	ExpectedMu float64
}

// AcquisitionParams holds parameters used by the acquisition criteria that
// turn a (mu, sigma) score into the value the optimizer minimises.
type AcquisitionParams struct {
	// Beta controls the exploration-exploitation trade-off in UCB.
	// - Higher values (e.g., 3.0 or 5.0) favour uncertain points
	// - Lower values (e.g., 0.1 or 0.5) stay close to the lowest mu
	Beta float64

	// RandomState is the random number generator used by Thompson Sampling.
	//
	// Warning:
	// - Do NOT use a nil RandomState with ThompsonSampling
	// - Do NOT share RandomState between concurrent optimizations
	RandomState *rand.Rand
}

// AcquisitionFunc turns a score and its uncertainty into the value an
// optimizer minimises. Lower values indicate more promising points.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64
