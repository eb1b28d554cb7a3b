package automl

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/jaswinder9051998/ATOM/optimize"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// ModelResult is the frozen summary row of one completed model run. It is
// populated by the run and never mutated after its handoff to the table.
type ModelResult struct {
	Acronym  string
	FullName string

	// MetricNames lists the evaluated metrics in request order, primary
	// first. MetricTrain and MetricTest align with it.
	MetricNames []string

	// BestParams is the winning trial's parameter assignment.
	BestParams map[string]interface{}
	// BestTrialIndex is the winning trial's position in the trial log.
	BestTrialIndex int
	// NTrials is the number of trials actually run.
	NTrials int
	// Stopped records why the search ended.
	Stopped optimize.StopReason

	// MetricBO is the winning trial's cross-validated primary score.
	MetricBO float64
	// MetricTrain and MetricTest are the refit estimator's scores on the
	// full training and test sets.
	MetricTrain []float64
	MetricTest  []float64

	// MetricBagging holds one primary-metric score per successful
	// bootstrap round; failed rounds are simply absent. Empty when
	// bagging was not requested.
	MetricBagging []float64
	MeanBagging   float64
	StdBagging    float64

	TimeBO      time.Duration
	TimeFit     time.Duration
	TimeBagging time.Duration
	TimeTotal   time.Duration
}

// meanStd returns the mean and sample standard deviation (n-1 in the
// denominator) of scores. Fewer than two values yield a zero deviation.
func meanStd(scores []float64) (mean, std float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))
	if len(scores) < 2 {
		return mean, 0
	}
	var ss float64
	for _, s := range scores {
		diff := s - mean
		ss += diff * diff
	}
	return mean, math.Sqrt(ss / float64(len(scores)-1))
}

// ResultsTable collects one row per completed model run, in run order.
// Appends are serialized; readers get copies. The table never sorts by
// score, so report order always matches execution order.
type ResultsTable struct {
	mu    sync.RWMutex
	rows  []ModelResult
	index map[string]int
}

// NewResultsTable creates an empty table.
func NewResultsTable() *ResultsTable {
	return &ResultsTable{index: make(map[string]int)}
}

// Append adds a completed row. Re-running the same acronym in one table
// is rejected.
func (t *ResultsTable) Append(result ModelResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := strings.ToUpper(result.Acronym)
	if _, exists := t.index[key]; exists {
		return errors.NewValidationError("acronym", "model already present in results table", result.Acronym)
	}
	t.index[key] = len(t.rows)
	t.rows = append(t.rows, result)
	return nil
}

// Len returns the number of completed rows.
func (t *ResultsTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Rows returns a copy of all rows in run order.
func (t *ResultsTable) Rows() []ModelResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rows := make([]ModelResult, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// Get returns the row for an acronym. Unknown acronyms return an
// UnknownModelError listing the completed models.
func (t *ResultsTable) Get(acronym string) (ModelResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[strings.ToUpper(acronym)]
	if !ok {
		known := make([]string, 0, len(t.rows))
		for _, row := range t.rows {
			known = append(known, row.Acronym)
		}
		return ModelResult{}, errors.NewUnknownModelError(acronym, known)
	}
	return t.rows[i], nil
}
