package automl

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jaswinder9051998/ATOM/core/parallel"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
	atomlog "github.com/jaswinder9051998/ATOM/pkg/log"
)

// Runner trains and compares several models on the same dataset. Models
// are independent, so they run in parallel workers; each keeps its own
// trial log, surrogate and estimator state, and only the finished row
// crosses into the shared results table.
type Runner struct {
	registry *Registry
	config   RunConfig
	logger   *slog.Logger
}

// NewRunner creates a Runner over a registry. A nil registry means the
// built-in model zoo; a nil logger falls back to slog.Default.
func NewRunner(registry *Registry, config RunConfig, logger *slog.Logger) *Runner {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{registry: registry, config: config, logger: logger}
}

// RunOutcome is the result of a multi-model run: the aggregated table
// plus a handle per completed model for predictions, custom scoring and
// estimator persistence.
type RunOutcome struct {
	Table *ResultsTable

	runs map[string]*ModelRun
}

// Model returns the run handle for an acronym. Models that failed or were
// never requested return an UnknownModelError.
func (o *RunOutcome) Model(acronym string) (*ModelRun, error) {
	run, ok := o.runs[strings.ToUpper(acronym)]
	if !ok {
		known := make([]string, 0, len(o.runs))
		for _, row := range o.Table.Rows() {
			known = append(known, row.Acronym)
		}
		return nil, errors.NewUnknownModelError(acronym, known)
	}
	return run, nil
}

// Run validates the configuration, trains every requested model and
// aggregates one row per model that completed. A model whose every trial
// failed is logged and skipped; it never aborts its siblings. The error
// is non-nil only for configuration problems that fail the whole run.
func (r *Runner) Run(ctx context.Context, data Dataset) (*RunOutcome, error) {
	scorers, err := r.config.Validate(r.registry)
	if err != nil {
		return nil, err
	}

	type modelOutcome struct {
		run    *ModelRun
		result ModelResult
		err    error
	}
	outcomes := make([]modelOutcome, len(r.config.Models))
	var mu sync.Mutex

	parallel.ParallelizeWorkers(r.config.NJobs, len(r.config.Models), func(start, end int) {
		for i := start; i < end; i++ {
			acronym := r.config.Models[i]
			// Lookup already validated; seed by position so results do
			// not depend on worker scheduling.
			spec, _ := r.registry.Lookup(acronym)
			seed := r.config.Seed + uint64(i)

			run, err := NewModelRun(spec, r.config, scorers, data, seed, r.logger)
			if err == nil {
				var result ModelResult
				result, err = run.Run(ctx)
				if err == nil {
					mu.Lock()
					outcomes[i] = modelOutcome{run: run, result: result}
					mu.Unlock()
					continue
				}
			}
			mu.Lock()
			outcomes[i] = modelOutcome{err: err}
			mu.Unlock()
		}
	})

	outcome := &RunOutcome{
		Table: NewResultsTable(),
		runs:  make(map[string]*ModelRun),
	}
	for i, mo := range outcomes {
		if mo.err != nil {
			r.logger.Error("model run failed",
				slog.String(atomlog.AcronymKey, r.config.Models[i]),
				atomlog.ErrAttr(mo.err),
			)
			continue
		}
		if err := outcome.Table.Append(mo.result); err != nil {
			return nil, err
		}
		outcome.runs[strings.ToUpper(mo.result.Acronym)] = mo.run
	}
	return outcome, nil
}
