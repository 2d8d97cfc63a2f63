package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/thalesfsp/hosel"
	"github.com/thalesfsp/hosel/logger"
)

// randomDraws bounds the constraint sampler retries when there is not
// enough history to fit both density models.
const randomDraws = 1000

// newSuggestCommand creates the suggest command.
func newSuggestCommand(out io.Writer) *cobra.Command {
	var (
		configPath string
		textLogs   bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Print the next configuration to evaluate as JSON",
		Long: `Fit a kernel density model on the good and on the bad observations of the
job file and select the configuration minimising their ratio, subject to the
job's sum constraint.

Without good or bad observations, or when the search ends on no feasible
configuration, a feasible random configuration is drawn instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := hosel.LoadConfig(configPath)
			if err != nil {
				return err
			}

			if textLogs {
				logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stderr))
			} else {
				logger.SetDefault(logger.New(cfg.LogLevel, os.Stderr))
			}

			sel, err := suggest(cmd, cfg)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")

			return enc.Encode(sel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hosel.yaml", "path to the YAML job file")
	cmd.Flags().BoolVar(&textLogs, "text-logs", false, "log in text instead of JSON")

	return cmd
}

// suggest runs one selection round for cfg.
func suggest(cmd *cobra.Command, cfg *hosel.Config) (*hosel.Selection, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))

	if len(cfg.Observations.Good) == 0 || len(cfg.Observations.Bad) == 0 {
		logger.Default.Info("not enough observations, using a random configuration",
			"good", len(cfg.Observations.Good),
			"bad", len(cfg.Observations.Bad),
		)

		return randomSelection(cfg, rng)
	}

	good := hosel.NewKernelDensity(cfg.Bandwidth, rng.Int63(), cfg.Observations.Good...)
	bad := hosel.NewKernelDensity(cfg.Bandwidth, rng.Int63(), cfg.Observations.Bad...)

	selCfg := cfg.SelectorConfig()
	selCfg.Logger = logger.Default

	sel, err := hosel.NewSelector(selCfg).SelectConstrained(cmd.Context(), cfg.Dimensions, cfg.Constraint, good, bad)
	if errors.Is(err, hosel.ErrNoFeasibleConfiguration) {
		// Equality constraints over continuous dimensions are rarely met
		// exactly by the local search.
		logger.Default.Warn("no feasible optimized configuration, using a random one", "error", err)

		return randomSelection(cfg, rng)
	}

	return sel, err
}

// randomSelection draws a feasible configuration with the constraint
// sampler, retrying up to randomDraws times. It backs suggest when there is
// too little history or the search finds nothing feasible.
func randomSelection(cfg *hosel.Config, rng *rand.Rand) (*hosel.Selection, error) {
	sampler, err := hosel.NewConstraintSampler(cfg.Constraint, cfg.Dimensions, hosel.WithRand(rng))
	if err != nil {
		return nil, err
	}

	draws := sampler.SampleN(1, randomDraws)
	if len(draws) == 0 {
		return nil, fmt.Errorf("%w after %d random draws", hosel.ErrNoFeasibleConfiguration, randomDraws)
	}

	return &hosel.Selection{
		RoundID:         uuid.New(),
		Configuration:   draws[0],
		AcquisitionFunc: "random",
	}, nil
}
