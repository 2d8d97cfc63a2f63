package hosel

import "errors"

// Errors returned by the selector and its collaborators. Callers match them
// with errors.Is; most are returned wrapped with extra context.
var (
	// ErrDivisionByZero is returned when the bad-density score is exactly 0.
	ErrDivisionByZero = errors.New("density ratio: bad model score is zero")

	// ErrNonFiniteScore is returned when the density ratio is NaN or infinite.
	ErrNonFiniteScore = errors.New("density ratio: non-finite score")

	// ErrIndexOutOfRange is returned when a constraint references a dimension
	// that does not exist.
	ErrIndexOutOfRange = errors.New("constraint index out of range")

	// ErrInvalidConstraint is returned when a constraint spec is malformed.
	ErrInvalidConstraint = errors.New("invalid constraint")

	// ErrInvalidDimension is returned when a dimension descriptor is malformed.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrNoStartingPoints is returned when the optimizer receives no seeds.
	ErrNoStartingPoints = errors.New("no starting points")

	// ErrNoFeasibleConfiguration is returned when no seed led the optimizer
	// to a configuration accepted by the feasibility predicate.
	ErrNoFeasibleConfiguration = errors.New("no feasible configuration found")

	// ErrNoObservations is returned by KernelDensity when it has nothing to
	// score or sample from.
	ErrNoObservations = errors.New("kernel density: no observations")

	// ErrNilModel is returned when a density model is missing.
	ErrNilModel = errors.New("density model is required")

	// ErrNegativeSampleCount is returned when fewer than zero samples are
	// requested.
	ErrNegativeSampleCount = errors.New("negative sample count")
)
