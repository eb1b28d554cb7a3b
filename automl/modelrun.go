package automl

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/metrics"
	"github.com/jaswinder9051998/ATOM/modelselection"
	"github.com/jaswinder9051998/ATOM/optimize"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
	atomlog "github.com/jaswinder9051998/ATOM/pkg/log"
	"github.com/jaswinder9051998/ATOM/preprocessing"
)

// Dataset is the train/test split a run operates on. Targets are n-by-1
// columns.
type Dataset struct {
	XTrain mat.Matrix
	YTrain mat.Matrix
	XTest  mat.Matrix
	YTest  mat.Matrix
}

// Split identifies which side of the dataset a prediction refers to.
type Split string

const (
	// SplitTrain is the training split.
	SplitTrain Split = "train"
	// SplitTest is the held-out test split.
	SplitTest Split = "test"
)

// ModelRun executes the full lifecycle for one model: Bayesian search,
// best-params refit on the entire training set, train/test scoring and
// optional bootstrap bagging. After the run it exposes the fitted winner
// with lazily cached predictions.
type ModelRun struct {
	spec    ModelSpec
	config  RunConfig
	scorers []metrics.Scorer
	seed    uint64
	logger  *slog.Logger

	data   Dataset
	scaler *preprocessing.StandardScaler

	mu        sync.Mutex
	estimator model.Estimator
	cache     map[string]mat.Matrix

	result ModelResult
	trials []optimize.Trial
	done   bool
}

// NewModelRun prepares a run for one registry spec. Models that need
// scaling get standardized features, with statistics learned from the
// training split only.
func NewModelRun(spec ModelSpec, config RunConfig, scorers []metrics.Scorer, data Dataset, seed uint64, logger *slog.Logger) (*ModelRun, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &ModelRun{
		spec:    spec,
		config:  config,
		scorers: scorers,
		seed:    seed,
		logger:  logger,
		data:    data,
		cache:   make(map[string]mat.Matrix),
	}

	if spec.NeedsScaling {
		m.scaler = preprocessing.NewStandardScaler()
		xTrain, err := m.scaler.FitTransform(data.XTrain)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: feature scaling", spec.Acronym)
		}
		xTest, err := m.scaler.Transform(data.XTest)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: feature scaling", spec.Acronym)
		}
		m.data.XTrain = xTrain
		m.data.XTest = xTest
	}
	return m, nil
}

// Run executes the lifecycle. The returned row is frozen; the error is
// non-nil when no trial succeeded or the final refit failed.
func (m *ModelRun) Run(ctx context.Context) (ModelResult, error) {
	start := time.Now()

	splitter := buildSplitter(m.config.BO.CV, m.spec.Task, m.seed)
	eval := newEvaluator(m.spec.Factory, m.scorers, splitter, m.data.XTrain, m.data.YTrain, m.config.NJobs)

	optimizer, err := optimize.New(m.spec.Space, optimize.Config{
		Name:          m.spec.Acronym,
		NCalls:        m.config.BO.NCalls,
		NRandomStarts: m.config.BO.NRandomStarts,
		MaxTime:       m.config.BO.MaxTime,
		Patience:      m.config.BO.Patience,
		Delta:         m.config.BO.Delta,
		Seed:          m.seed,
	}, m.logger)
	if err != nil {
		return ModelResult{}, err
	}

	searchResult, err := optimizer.Run(ctx, eval.objective())
	if err != nil {
		return ModelResult{}, err
	}
	m.trials = searchResult.Trials
	best := searchResult.Best()

	m.logger.Info("search finished",
		slog.String(atomlog.AcronymKey, m.spec.Acronym),
		slog.String(atomlog.OperationKey, "bo"),
		slog.Int(atomlog.TrialKey, best.Index),
		slog.Float64(atomlog.ScoreKey, best.Primary()),
		slog.Any(atomlog.ParamsKey, best.Params),
		slog.Duration(atomlog.DurationKey, searchResult.Duration),
	)

	// Refit the winning parameters on the entire training set, not the
	// cross-validation folds.
	fitStart := time.Now()
	estimator := m.spec.Factory()
	if len(best.Params) > 0 {
		if err := estimator.SetParams(best.Params); err != nil {
			return ModelResult{}, errors.Wrapf(err, "%s: refit", m.spec.Acronym)
		}
	}
	err = errors.SafeExecute("best-params refit", func() error {
		return estimator.Fit(m.data.XTrain, m.data.YTrain)
	})
	if err != nil {
		return ModelResult{}, errors.Wrapf(err, "%s: refit", m.spec.Acronym)
	}
	timeFit := time.Since(fitStart)
	m.SetEstimator(estimator)

	metricTrain := make([]float64, len(m.scorers))
	metricTest := make([]float64, len(m.scorers))
	for i, scorer := range m.scorers {
		if metricTrain[i], err = m.score(scorer, SplitTrain); err != nil {
			return ModelResult{}, errors.Wrapf(err, "%s: train scoring", m.spec.Acronym)
		}
		if metricTest[i], err = m.score(scorer, SplitTest); err != nil {
			return ModelResult{}, errors.Wrapf(err, "%s: test scoring", m.spec.Acronym)
		}
	}

	metricBagging, timeBagging := m.runBagging(best.Params)
	meanBagging, stdBagging := meanStd(metricBagging)

	metricNames := make([]string, len(m.scorers))
	for i, scorer := range m.scorers {
		metricNames[i] = scorer.Name
	}

	m.result = ModelResult{
		Acronym:        m.spec.Acronym,
		FullName:       m.spec.FullName,
		MetricNames:    metricNames,
		BestParams:     best.Params,
		BestTrialIndex: best.Index,
		NTrials:        len(searchResult.Trials),
		Stopped:        searchResult.Stopped,
		MetricBO:       best.Primary(),
		MetricTrain:    metricTrain,
		MetricTest:     metricTest,
		MetricBagging:  metricBagging,
		MeanBagging:    meanBagging,
		StdBagging:     stdBagging,
		TimeBO:         searchResult.Duration,
		TimeFit:        timeFit,
		TimeBagging:    timeBagging,
		TimeTotal:      time.Since(start),
	}
	m.done = true
	return m.result, nil
}

// runBagging evaluates the winning parameters on bootstrap resamples of
// the training set, scoring each refit against the original test set.
// Failed rounds are warned about and skipped, shrinking the sample count
// instead of aborting.
func (m *ModelRun) runBagging(bestParams map[string]interface{}) ([]float64, time.Duration) {
	if m.config.Bagging.N <= 0 {
		return nil, 0
	}
	start := time.Now()
	rng := rand.New(rand.NewPCG(m.seed, m.seed+1))
	nSamples, _ := m.data.XTrain.Dims()
	primary := m.scorers[0]

	scores := make([]float64, 0, m.config.Bagging.N)
	for round := 0; round < m.config.Bagging.N; round++ {
		indices := modelselection.Bootstrap(nSamples, rng)
		xBoot := modelselection.Subset(m.data.XTrain, indices)
		yBoot := modelselection.SubsetVec(m.data.YTrain, indices)

		clone := m.spec.Factory()
		if len(bestParams) > 0 {
			if err := clone.SetParams(bestParams); err != nil {
				errors.Warn(errors.NewBaggingFitWarning(m.spec.Acronym, round, err))
				continue
			}
		}
		err := errors.SafeExecute("bagging fit", func() error {
			return clone.Fit(xBoot, yBoot)
		})
		if err != nil {
			errors.Warn(errors.NewBaggingFitWarning(m.spec.Acronym, round, err))
			continue
		}

		score, err := scoreEstimator(clone, primary, m.data.XTest, m.data.YTest)
		if err != nil {
			errors.Warn(errors.NewBaggingFitWarning(m.spec.Acronym, round, err))
			continue
		}
		scores = append(scores, score)
	}

	m.logger.Info("bagging finished",
		slog.String(atomlog.AcronymKey, m.spec.Acronym),
		slog.String(atomlog.OperationKey, "bagging"),
		slog.Int(atomlog.SamplesKey, len(scores)),
		slog.Duration(atomlog.DurationKey, time.Since(start)),
	)
	return scores, time.Since(start)
}

// Estimator returns the current fitted estimator handle.
func (m *ModelRun) Estimator() model.Estimator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.estimator
}

// SetEstimator replaces the estimator handle and clears every cached
// prediction, so post-hoc changes like recalibration can never serve
// stale predictions.
func (m *ModelRun) SetEstimator(estimator model.Estimator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estimator = estimator
	m.cache = make(map[string]mat.Matrix)
}

// Trials returns the chronological trial log of the search.
func (m *ModelRun) Trials() []optimize.Trial {
	return m.trials
}

// Result returns the frozen row. Valid only after a successful Run.
func (m *ModelRun) Result() ModelResult {
	return m.result
}

func (m *ModelRun) features(split Split) (mat.Matrix, mat.Matrix) {
	if split == SplitTrain {
		return m.data.XTrain, m.data.YTrain
	}
	return m.data.XTest, m.data.YTest
}

// Predict returns the estimator's predictions for a split, computing them
// on first access and serving the cache afterwards.
func (m *ModelRun) Predict(split Split) (mat.Matrix, error) {
	return m.cached("predict:"+string(split), func(x mat.Matrix) (mat.Matrix, error) {
		return m.estimator.Predict(x)
	}, split)
}

// PredictProba returns cached class probabilities for a split. The
// estimator must be a classifier.
func (m *ModelRun) PredictProba(split Split) (mat.Matrix, error) {
	return m.cached("proba:"+string(split), func(x mat.Matrix) (mat.Matrix, error) {
		classifier, ok := m.estimator.(model.Classifier)
		if !ok {
			return nil, errors.NewValueError("predict_proba", m.spec.Acronym+" is not a classifier")
		}
		return classifier.PredictProba(x)
	}, split)
}

func (m *ModelRun) cached(key string, compute func(mat.Matrix) (mat.Matrix, error), split Split) (mat.Matrix, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.estimator == nil {
		return nil, errors.NewNotFittedError(m.spec.Acronym, "Predict")
	}
	if value, ok := m.cache[key]; ok {
		return value, nil
	}
	x, _ := m.features(split)
	value, err := compute(x)
	if err != nil {
		return nil, err
	}
	m.cache[key] = value
	return value, nil
}

// score evaluates one scorer on a split through the prediction cache and
// returns the signed (maximization) value.
func (m *ModelRun) score(scorer metrics.Scorer, split Split) (float64, error) {
	_, y := m.features(split)
	if scorer.NeedsProba {
		probas, err := m.PredictProba(split)
		if err != nil {
			return 0, err
		}
		nSamples, nClasses := probas.Dims()
		positive := mat.NewDense(nSamples, 1, nil)
		for i := 0; i < nSamples; i++ {
			positive.Set(i, 0, probas.At(i, nClasses-1))
		}
		return scorer.Score(y, positive)
	}
	predictions, err := m.Predict(split)
	if err != nil {
		return 0, err
	}
	return scorer.Score(y, predictions)
}

// Scoring evaluates any registered scorer on a split, in the metric's
// natural units (losses are not negated). This covers the
// confusion-matrix derivatives (tn, fp, fn, tp, lift, fpr, tpr, sup)
// beyond the metrics configured for the run.
func (m *ModelRun) Scoring(metric string, split Split) (float64, error) {
	scorer, err := metrics.Get(metric)
	if err != nil {
		return 0, err
	}
	_, y := m.features(split)
	if scorer.NeedsProba {
		probas, err := m.PredictProba(split)
		if err != nil {
			return 0, err
		}
		nSamples, nClasses := probas.Dims()
		positive := mat.NewDense(nSamples, 1, nil)
		for i := 0; i < nSamples; i++ {
			positive.Set(i, 0, probas.At(i, nClasses-1))
		}
		return scorer.Raw(y, positive)
	}
	predictions, err := m.Predict(split)
	if err != nil {
		return 0, err
	}
	return scorer.Raw(y, predictions)
}

// SaveEstimator serializes the fitted estimator to path. The estimator
// must support persistence.
func (m *ModelRun) SaveEstimator(path string) error {
	estimator := m.Estimator()
	if estimator == nil {
		return errors.NewNotFittedError(m.spec.Acronym, "SaveEstimator")
	}
	persistable, ok := estimator.(model.Persistable)
	if !ok {
		return errors.NewValueError("save", m.spec.Acronym+" does not support persistence")
	}
	if !strings.HasSuffix(path, ".gob") {
		path += ".gob"
	}
	return persistable.Save(path)
}
