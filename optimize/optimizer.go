package optimize

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
	atomlog "github.com/jaswinder9051998/ATOM/pkg/log"
)

// Evaluation is what an Objective returns for one parameter assignment:
// the fitted estimator and the signed metric values, primary first.
type Evaluation struct {
	Estimator model.Estimator
	Scores    []float64
}

// Objective evaluates one parameter assignment. An error marks the trial
// as failed with a sentinel score; it never aborts the search.
type Objective func(ctx context.Context, params map[string]interface{}) (Evaluation, error)

// StopReason records why the optimization loop ended.
type StopReason string

const (
	// StopCompleted means all configured calls ran.
	StopCompleted StopReason = "completed"
	// StopMaxTime means the wall-clock budget was exceeded at an
	// iteration boundary.
	StopMaxTime StopReason = "max_time"
	// StopPlateau means the patience window elapsed with no improvement.
	StopPlateau StopReason = "plateau"
	// StopCancelled means the context was cancelled.
	StopCancelled StopReason = "cancelled"
)

// Config controls one optimization run.
type Config struct {
	// Name tags log lines and errors with the model being tuned.
	Name string
	// NCalls is the total number of trials, random starts included.
	NCalls int
	// NRandomStarts is the length of the random-exploration phase.
	NRandomStarts int
	// NCandidates is the size of the random candidate pool ranked by the
	// acquisition function each guided iteration. Zero means 500.
	NCandidates int
	// MaxTime caps the wall-clock budget. Checked at iteration
	// boundaries only, never mid-fit; at least one trial always runs.
	// Zero means unlimited.
	MaxTime time.Duration
	// Patience stops the loop after this many consecutive trials without
	// improvement of the primary score. Zero disables early stopping.
	Patience int
	// Delta is the minimum score gain that counts as an improvement for
	// the patience rule.
	Delta float64
	// Acquisition ranks guided candidates. Nil means ExpectedImprovement.
	Acquisition AcquisitionFunc
	// Beta is the UCB exploration weight.
	Beta float64
	// Xi is the EI/PI improvement margin.
	Xi float64
	// Seed makes the sampled points and guided choices reproducible.
	Seed uint64
}

// Validate rejects configurations that cannot produce a well-formed run.
func (c Config) Validate() error {
	if c.NCalls < 1 {
		return errors.NewValidationError("n_calls", "must be at least 1", c.NCalls)
	}
	if c.NRandomStarts < 1 {
		return errors.NewValidationError("n_random_starts", "must be at least 1", c.NRandomStarts)
	}
	if c.NRandomStarts > c.NCalls {
		return errors.NewValidationError("n_random_starts", "must not exceed n_calls", c.NRandomStarts)
	}
	if c.Patience < 0 {
		return errors.NewValidationError("patience", "must not be negative", c.Patience)
	}
	if c.MaxTime < 0 {
		return errors.NewValidationError("max_time", "must not be negative", c.MaxTime)
	}
	return nil
}

// Result is the outcome of a run: the full trial log, the index of the
// best trial and why the loop ended.
type Result struct {
	Trials    []Trial
	BestIndex int
	Duration  time.Duration
	Stopped   StopReason
}

// Best returns the winning trial.
func (r *Result) Best() Trial {
	return r.Trials[r.BestIndex]
}

// Optimizer drives an Objective over a Space. Each instance owns its
// random generator and surrogate, so concurrent model runs stay isolated.
type Optimizer struct {
	space  Space
	config Config
	logger *slog.Logger
}

// New validates the space and config and returns a ready optimizer. A nil
// logger falls back to slog.Default.
func New(space Space, config Config, logger *slog.Logger) (*Optimizer, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.NCandidates <= 0 {
		config.NCandidates = 500
	}
	if config.Acquisition == nil {
		config.Acquisition = ExpectedImprovement
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{space: space, config: config, logger: logger}, nil
}

// Run executes the search: INIT, then NRandomStarts random trials, then
// guided trials until NCalls, the time budget, the patience rule or the
// context ends the loop. An empty space runs the default parameters once,
// whatever NCalls says. The error is non-nil only when every trial
// failed.
func (o *Optimizer) Run(ctx context.Context, objective Objective) (*Result, error) {
	start := time.Now()
	rng := rand.New(rand.NewPCG(o.config.Seed, o.config.Seed))

	if o.space.Empty() {
		trial := o.evaluate(ctx, objective, map[string]interface{}{}, 0, "default", start)
		return o.finish([]Trial{trial}, start, StopCompleted)
	}

	gp := newGaussianProcess()
	trials := make([]Trial, 0, o.config.NCalls)
	stopped := StopCompleted

	bestScore := math.Inf(-1)
	sinceImprovement := 0

	for i := 0; i < o.config.NCalls; i++ {
		// Budget checks happen only at iteration boundaries, and the
		// first trial is always attempted.
		if i > 0 {
			if err := ctx.Err(); err != nil {
				stopped = StopCancelled
				break
			}
			if o.config.MaxTime > 0 && time.Since(start) >= o.config.MaxTime {
				stopped = StopMaxTime
				break
			}
			if o.config.Patience > 0 && sinceImprovement >= o.config.Patience {
				stopped = StopPlateau
				break
			}
		}

		phase := "random_start"
		var params map[string]interface{}
		if i < o.config.NRandomStarts {
			params = o.space.Sample(rng)
		} else {
			phase = "guided"
			params = o.proposeNext(trials, gp, rng, bestScore)
		}

		trial := o.evaluate(ctx, objective, params, i, phase, start)
		trials = append(trials, trial)

		if score := trial.Primary(); score > bestScore+o.config.Delta {
			bestScore = score
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}
	}

	return o.finish(trials, start, stopped)
}

// evaluate runs the objective for one assignment and wraps the outcome in
// a Trial. Objective errors become failed trials with the sentinel score.
func (o *Optimizer) evaluate(ctx context.Context, objective Objective, params map[string]interface{}, index int, phase string, start time.Time) Trial {
	trialStart := time.Now()
	eval, err := objective(ctx, params)
	duration := time.Since(trialStart)

	trial := Trial{
		Index:    index,
		Params:   params,
		Duration: duration,
		Elapsed:  time.Since(start),
	}
	if err != nil {
		trial.Err = errors.NewTrialFitError(o.config.Name, index, params, err)
		o.logger.Warn("trial failed",
			slog.String(atomlog.AcronymKey, o.config.Name),
			slog.Int(atomlog.TrialKey, index),
			slog.String(atomlog.PhaseKey, phase),
			slog.Any(atomlog.ParamsKey, params),
			atomlog.ErrAttr(err),
		)
		return trial
	}

	trial.Estimator = eval.Estimator
	trial.Scores = eval.Scores
	o.logger.Info("trial completed",
		slog.String(atomlog.AcronymKey, o.config.Name),
		slog.Int(atomlog.TrialKey, index),
		slog.String(atomlog.PhaseKey, phase),
		slog.Any(atomlog.ParamsKey, params),
		slog.Float64(atomlog.ScoreKey, trial.Primary()),
		slog.Duration(atomlog.DurationKey, duration),
	)
	return trial
}

// proposeNext refits the surrogate on all valid trials and returns the
// candidate with the highest acquisition value. With no valid trials yet,
// or a degenerate surrogate, it falls back to random sampling.
func (o *Optimizer) proposeNext(trials []Trial, gp *gaussianProcess, rng *rand.Rand, bestScore float64) map[string]interface{} {
	var x [][]float64
	var y []float64
	for _, t := range trials {
		if t.Failed() {
			continue
		}
		x = append(x, o.space.Encode(t.Params))
		y = append(y, t.Primary())
	}
	if len(x) == 0 {
		return o.space.Sample(rng)
	}
	if err := gp.Fit(x, y); err != nil {
		return o.space.Sample(rng)
	}

	acqParams := AcquisitionParams{
		Best: bestScore,
		Beta: o.config.Beta,
		Xi:   o.config.Xi,
		Rand: rng,
	}

	var best map[string]interface{}
	bestAcq := math.Inf(-1)
	for j := 0; j < o.config.NCandidates; j++ {
		candidate := o.space.Sample(rng)
		mean, variance := gp.Predict(o.space.Encode(candidate))
		if acq := o.config.Acquisition(mean, variance, acqParams); acq > bestAcq {
			bestAcq = acq
			best = candidate
		}
	}
	return best
}

func (o *Optimizer) finish(trials []Trial, start time.Time, stopped StopReason) (*Result, error) {
	best, err := BestTrial(o.config.Name, trials)
	if err != nil {
		return nil, err
	}
	return &Result{
		Trials:    trials,
		BestIndex: best,
		Duration:  time.Since(start),
		Stopped:   stopped,
	}, nil
}
