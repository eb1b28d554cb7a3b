// Package automl wires the optimization lifecycle together: it resolves
// model acronyms through a registry, tunes each model with Bayesian
// optimization over cross-validated objectives, refits the winner on the
// full training set, optionally estimates score spread with bootstrap
// bagging and aggregates one frozen result row per model.
package automl

import (
	"strings"
	"time"

	"github.com/jaswinder9051998/ATOM/metrics"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// BOConfig controls the Bayesian search of a single model run.
type BOConfig struct {
	// NCalls is the total trial budget, random starts included.
	NCalls int
	// NRandomStarts is the length of the random-exploration phase.
	NRandomStarts int
	// CV is the number of cross-validation folds per objective
	// evaluation. 1 means a single shuffle split.
	CV int
	// MaxTime caps the per-model wall-clock budget, zero means unlimited.
	MaxTime time.Duration
	// Patience stops a model's search after this many trials without
	// improvement, zero disables early stopping.
	Patience int
	// Delta is the minimum score gain counted as improvement.
	Delta float64
}

func defaultBOConfig() BOConfig {
	return BOConfig{NCalls: 15, NRandomStarts: 5, CV: 3}
}

// Validate rejects budgets that cannot produce a well-formed search.
func (c BOConfig) Validate() error {
	if c.NCalls < 1 {
		return errors.NewValidationError("n_calls", "must be at least 1", c.NCalls)
	}
	if c.NRandomStarts < 1 {
		return errors.NewValidationError("n_random_starts", "must be at least 1", c.NRandomStarts)
	}
	if c.NRandomStarts > c.NCalls {
		return errors.NewValidationError("n_random_starts", "must not exceed n_calls", c.NRandomStarts)
	}
	if c.CV < 1 {
		return errors.NewValidationError("cv", "must be at least 1", c.CV)
	}
	return nil
}

// BaggingConfig controls the bootstrap evaluation of the refit winner.
type BaggingConfig struct {
	// N is the number of bootstrap rounds, zero disables bagging.
	N int
}

// Validate rejects negative round counts.
func (c BaggingConfig) Validate() error {
	if c.N < 0 {
		return errors.NewValidationError("bagging", "must not be negative", c.N)
	}
	return nil
}

// RunConfig is the full configuration of a multi-model run.
type RunConfig struct {
	// Models lists the registry acronyms to train, in run order.
	Models []string
	// Metrics names the scorers to evaluate. The first is primary and
	// alone drives trial ranking; the rest are recorded for reporting.
	Metrics []string
	// BO configures the per-model search.
	BO BOConfig
	// Bagging configures the bootstrap evaluation.
	Bagging BaggingConfig
	// NJobs caps the worker count for parallel model runs and
	// cross-validation folds. Zero or negative means one worker per CPU.
	NJobs int
	// Seed drives every random decision in the run.
	Seed uint64
}

// Validate resolves metric names and checks every sub-config. It returns
// the resolved scorers so validation and resolution happen once.
func (c RunConfig) Validate(registry *Registry) ([]metrics.Scorer, error) {
	if len(c.Models) == 0 {
		return nil, errors.NewValidationError("models", "at least one model acronym is required", c.Models)
	}
	if len(c.Metrics) == 0 {
		return nil, errors.NewValidationError("metrics", "at least one metric is required", c.Metrics)
	}
	if err := c.BO.Validate(); err != nil {
		return nil, err
	}
	if err := c.Bagging.Validate(); err != nil {
		return nil, err
	}

	scorers := make([]metrics.Scorer, len(c.Metrics))
	for i, name := range c.Metrics {
		scorer, err := metrics.Get(name)
		if err != nil {
			return nil, err
		}
		scorers[i] = scorer
	}

	// Duplicates and metric/model compatibility fail fast, before any
	// trial runs.
	seen := make(map[string]bool, len(c.Models))
	for _, acronym := range c.Models {
		key := strings.ToUpper(acronym)
		if seen[key] {
			return nil, errors.NewValidationError("models", "duplicate model acronym", acronym)
		}
		seen[key] = true

		spec, err := registry.Lookup(acronym)
		if err != nil {
			return nil, err
		}
		for i, scorer := range scorers {
			if scorer.Task != metrics.TaskAny && scorer.Task != spec.Task {
				return nil, errors.NewConfigurationError(acronym, "metric",
					"scorer '"+c.Metrics[i]+"' does not apply to this model's task")
			}
		}
	}
	return scorers, nil
}
