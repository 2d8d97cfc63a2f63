package hosel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/thalesfsp/hosel/logger"
)

// DefaultNumStartingPoints is the number of seeds SelectWithSampling draws
// from the good model when no count is configured.
const DefaultNumStartingPoints = 100

// SelectorConfig holds the configuration of a Selector.
//
// Fields explanation:
// - Optimizer: Search strategy handed the scorer, bounds and seeds
// - NumStartingPoints: Seeds drawn by SelectConstrained
// - FilterSeeds: Drop seeds rejected by the predicate before optimizing
// - Logger: Structured logger for round start and end
// - ProgressChan: Optional, non-blocking progress updates
//
// Note:
// - Create separate configs (and constraint specs) for parallel tuning jobs.
type SelectorConfig struct {
	// Optimizer runs the actual numeric search. Default
	// DefaultLocalSearchOptimizer().
	Optimizer AcquisitionOptimizer

	// NumStartingPoints is how many seeds SelectConstrained samples from
	// the good model.
	// Recommended range: 20-500
	NumStartingPoints int

	// FilterSeeds drops seeds the predicate rejects before they reach the
	// optimizer. When every seed is rejected the unfiltered set is used.
	// Off by default: seeds are forwarded as sampled and the optimizer
	// applies the predicate during its own search.
	FilterSeeds bool

	// Logger receives round start and end records. Default logger.Default.
	Logger *slog.Logger

	// ProgressChan is used to send progress updates during selection.
	// If nil, no updates will be sent.
	ProgressChan chan<- ProgressUpdate
}

// DefaultSelectorConfig returns a default configuration.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		Optimizer:         DefaultLocalSearchOptimizer(),
		NumStartingPoints: DefaultNumStartingPoints,
		FilterSeeds:       false,
		Logger:            logger.Default,
		ProgressChan:      nil, // Default to no progress updates.
	}
}

// Selector proposes the next configuration to evaluate by minimising the
// good/bad density ratio over the search space.
//
// A Selector holds no per-round state. The constraint of a round travels as
// an argument, so one Selector can serve concurrent rounds as long as the
// optimizer and models allow it.
type Selector struct {
	config SelectorConfig
}

//////
// Exported functionalities.
//////

// Select runs one selection round from the given seeds.
//
// Parameters:
// - ctx: Cancels the optimizer's search
// - dims: The search space, in configuration order
// - good, bad: Density models fit on good and bad outcomes
// - starts: Seeds for the optimizer, forwarded as given (no deduplication)
// - predicate: Optional hard constraint enforced by the optimizer on every
// configuration it considers, seeds included
//
// Returns:
// - *Selection: The optimizer's best configuration and its score
// - error: Any model or optimizer error, wrapped; nothing is recovered here
//
// Usage example:
//
//	sel := NewSelector(DefaultSelectorConfig())
//	spec := ConstraintSpec{Lower: 5, Upper: 5, Indices: []int{0, 1}}
//
//	next, err := sel.Select(ctx, dims, good, bad, seeds, spec.Predicate())
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(next.Configuration, next.ExpectedMu)
func (s *Selector) Select(
	ctx context.Context,
	dims []Dimension,
	good, bad DensityModel,
	starts []Configuration,
	predicate Predicate,
) (*Selection, error) {
	if good == nil || bad == nil {
		return nil, ErrNilModel
	}

	return s.run(ctx, uuid.New(), dims, good, bad, starts, predicate)
}

// SelectWithSampling draws n seeds from the good model and runs Select with
// them.
//
// Seeds come from the good density, not from a constraint sampler, so they
// may violate predicate. Unless FilterSeeds is set they are still handed to
// the optimizer unchanged; the predicate only applies inside its search.
func (s *Selector) SelectWithSampling(
	ctx context.Context,
	dims []Dimension,
	good, bad DensityModel,
	n int,
	predicate Predicate,
) (*Selection, error) {
	if good == nil || bad == nil {
		return nil, ErrNilModel
	}

	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeSampleCount, n)
	}

	roundID := uuid.New()

	starts, err := good.Sample(n)
	if err != nil {
		return nil, fmt.Errorf("sample starting points: %w", err)
	}

	s.sendProgress(ProgressUpdate{Phase: "Seeding", RoundID: roundID, Seeds: len(starts)})

	if s.config.FilterSeeds && predicate != nil {
		if err := ValidateDimensions(dims); err != nil {
			return nil, err
		}

		starts = filterSeeds(starts, dims, predicate, s.log().With("round_id", roundID.String()))
	}

	return s.run(ctx, roundID, dims, good, bad, starts, predicate)
}

// SelectConstrained validates spec against dims, then runs
// SelectWithSampling with NumStartingPoints seeds and the spec's predicate.
func (s *Selector) SelectConstrained(
	ctx context.Context,
	dims []Dimension,
	spec ConstraintSpec,
	good, bad DensityModel,
) (*Selection, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}

	if err := spec.Validate(dims); err != nil {
		return nil, err
	}

	return s.SelectWithSampling(ctx, dims, good, bad, s.config.NumStartingPoints, spec.Predicate())
}

// run hands one round to the optimizer.
func (s *Selector) run(
	ctx context.Context,
	roundID uuid.UUID,
	dims []Dimension,
	good, bad DensityModel,
	starts []Configuration,
	predicate Predicate,
) (*Selection, error) {
	log := s.log().With("round_id", roundID.String())

	log.Debug("selection started",
		"dimensions", len(dims),
		"seeds", len(starts),
		"constrained", predicate != nil,
	)

	s.sendProgress(ProgressUpdate{Phase: "Optimizing", RoundID: roundID, Seeds: len(starts)})

	best, err := s.config.Optimizer.Optimize(ctx, NewRatioScorer(good, bad), dims, starts, predicate)
	if err != nil {
		log.Error("selection failed", "error", err)

		return nil, fmt.Errorf("select next configuration: %w", err)
	}

	out := &Selection{
		RoundID:         roundID,
		Configuration:   best.Configuration,
		ExpectedMu:      best.Score.Ratio,
		ExpectedSigma:   best.Score.Uncertainty,
		AcquisitionFunc: AcquisitionLowestMu,
	}

	log.Info("selection finished",
		"configuration", out.Configuration,
		"expected_mu", out.ExpectedMu,
	)

	s.sendProgress(ProgressUpdate{
		Phase:         "Selected",
		RoundID:       roundID,
		Seeds:         len(starts),
		Configuration: out.Configuration.Clone(),
		ExpectedMu:    out.ExpectedMu,
	})

	return out, nil
}

// sendProgress publishes an update without blocking.
func (s *Selector) sendProgress(update ProgressUpdate) {
	if s.config.ProgressChan == nil {
		return
	}

	select {
	case s.config.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}

func (s *Selector) log() *slog.Logger {
	if s.config.Logger == nil {
		return logger.Default
	}

	return s.config.Logger
}

// filterSeeds keeps the seeds predicate accepts once snapped onto dims. If
// none pass, all seeds are returned. Seeds of the wrong length are kept for
// the optimizer to reject.
func filterSeeds(starts []Configuration, dims []Dimension, predicate Predicate, log *slog.Logger) []Configuration {
	kept := make([]Configuration, 0, len(starts))

	for _, c := range starts {
		if len(c) != len(dims) || predicate(MatchValueTypes(c, dims)) {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		log.Warn("no feasible seeds, keeping all", "seeds", len(starts))

		return starts
	}

	log.Debug("filtered seeds", "kept", len(kept), "dropped", len(starts)-len(kept))

	return kept
}

//////
// Factory.
//////

// NewSelector creates a Selector. Zero fields of config take the values of
// DefaultSelectorConfig.
func NewSelector(config SelectorConfig) *Selector {
	def := DefaultSelectorConfig()

	if config.Optimizer == nil {
		config.Optimizer = def.Optimizer
	}

	if config.NumStartingPoints <= 0 {
		config.NumStartingPoints = def.NumStartingPoints
	}

	if config.Logger == nil {
		config.Logger = def.Logger
	}

	return &Selector{config: config}
}
