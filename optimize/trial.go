package optimize

import (
	"math"
	"time"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// Trial is one evaluated hyperparameter combination. Trials are appended
// to the log in chronological order and never mutated afterwards.
type Trial struct {
	// Index is the zero-based position in the trial log.
	Index int
	// Params is the parameter assignment that was evaluated.
	Params map[string]interface{}
	// Estimator is the fitted estimator handle, nil for failed trials.
	Estimator model.Estimator
	// Scores holds the signed metric values, first entry is the primary
	// metric. Nil for failed trials.
	Scores []float64
	// Duration is the wall-clock time of this evaluation.
	Duration time.Duration
	// Elapsed is the cumulative wall-clock time up to and including this
	// trial.
	Elapsed time.Duration
	// Err records why the evaluation failed, nil on success.
	Err error
}

// Failed reports whether the evaluation failed.
func (t Trial) Failed() bool {
	return t.Err != nil
}

// Primary returns the score that drives trial ranking. Failed trials rank
// below every valid score.
func (t Trial) Primary() float64 {
	if t.Failed() || len(t.Scores) == 0 {
		return math.Inf(-1)
	}
	return t.Scores[0]
}

// BestTrial returns the index of the trial with the highest primary score.
// Exact ties resolve to the earliest trial. All trials failed returns a
// NoValidTrialError.
func BestTrial(name string, trials []Trial) (int, error) {
	best := -1
	bestScore := math.Inf(-1)
	for i, t := range trials {
		if t.Failed() {
			continue
		}
		if score := t.Primary(); score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return 0, errors.NewNoValidTrialError(name, len(trials))
	}
	return best, nil
}
