package automl

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/core/parallel"
	"github.com/jaswinder9051998/ATOM/metrics"
	"github.com/jaswinder9051998/ATOM/modelselection"
	"github.com/jaswinder9051998/ATOM/optimize"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// evaluator turns one parameter assignment into cross-validated scores.
// Folds are fit on independent estimator clones, so they can run in
// parallel.
type evaluator struct {
	factory  func() model.Estimator
	scorers  []metrics.Scorer
	splitter modelselection.Splitter
	x        mat.Matrix
	y        mat.Matrix
	nJobs    int
}

func newEvaluator(factory func() model.Estimator, scorers []metrics.Scorer, splitter modelselection.Splitter, x, y mat.Matrix, nJobs int) *evaluator {
	return &evaluator{
		factory:  factory,
		scorers:  scorers,
		splitter: splitter,
		x:        x,
		y:        y,
		nJobs:    nJobs,
	}
}

// objective adapts the evaluator to the optimizer's callback contract.
// Fit panics and errors surface as ordinary trial failures.
func (e *evaluator) objective() optimize.Objective {
	return func(_ context.Context, params map[string]interface{}) (optimize.Evaluation, error) {
		estimator := e.factory()
		if len(params) > 0 {
			if err := estimator.SetParams(params); err != nil {
				return optimize.Evaluation{}, err
			}
		}

		folds := e.splitter.Split(e.x, e.y)
		foldScores := make([][]float64, len(folds))
		foldErrs := make([]error, len(folds))
		fitted := make([]model.Estimator, len(folds))

		parallel.ParallelizeWorkers(e.nJobs, len(folds), func(start, end int) {
			for k := start; k < end; k++ {
				fitted[k], foldScores[k], foldErrs[k] = e.evaluateFold(estimator, folds[k])
			}
		})

		for _, err := range foldErrs {
			if err != nil {
				return optimize.Evaluation{}, err
			}
		}

		// Mean of each metric across folds, primary metric first.
		scores := make([]float64, len(e.scorers))
		for _, fs := range foldScores {
			for m := range scores {
				scores[m] += fs[m]
			}
		}
		for m := range scores {
			scores[m] /= float64(len(folds))
		}

		return optimize.Evaluation{Estimator: fitted[0], Scores: scores}, nil
	}
}

// evaluateFold fits a clone on the fold's training rows and scores it on
// the validation rows.
func (e *evaluator) evaluateFold(estimator model.Estimator, fold modelselection.Fold) (model.Estimator, []float64, error) {
	clone := estimator.Clone()

	xTrain := modelselection.Subset(e.x, fold.TrainIndices)
	yTrain := modelselection.SubsetVec(e.y, fold.TrainIndices)
	xVal := modelselection.Subset(e.x, fold.TestIndices)
	yVal := modelselection.SubsetVec(e.y, fold.TestIndices)

	err := errors.SafeExecute("cross-validation fit", func() error {
		return clone.Fit(xTrain, yTrain)
	})
	if err != nil {
		return nil, nil, err
	}

	scores := make([]float64, len(e.scorers))
	for m, scorer := range e.scorers {
		score, err := scoreEstimator(clone, scorer, xVal, yVal)
		if err != nil {
			return nil, nil, err
		}
		scores[m] = score
	}
	return clone, scores, nil
}

// scoreEstimator evaluates one scorer against an estimator's predictions.
// Probability scorers read the positive-class column of PredictProba.
func scoreEstimator(estimator model.Estimator, scorer metrics.Scorer, x mat.Matrix, y mat.Matrix) (float64, error) {
	if scorer.NeedsProba {
		classifier, ok := estimator.(model.Classifier)
		if !ok {
			return 0, errors.NewValueError("score",
				"scorer '"+scorer.Name+"' needs probabilities but the estimator is not a classifier")
		}
		probas, err := classifier.PredictProba(x)
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

	predictions, err := estimator.Predict(x)
	if err != nil {
		return 0, err
	}
	return scorer.Score(y, predictions)
}

// buildSplitter picks the cross-validation strategy: stratified k-fold
// for classifiers with cv >= 2, plain k-fold otherwise, and a single
// shuffle split for cv == 1.
func buildSplitter(cv int, task metrics.Task, seed uint64) modelselection.Splitter {
	if cv == 1 {
		return modelselection.NewShuffleSplit(0.2, seed)
	}
	if task == metrics.TaskClassification {
		return modelselection.NewStratifiedKFold(cv, true, seed)
	}
	return modelselection.NewKFold(cv, true, seed)
}
