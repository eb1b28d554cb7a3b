// Package models contains the built-in estimators that ship with the
// optimization lifecycle: Gaussian Naive Bayes, Ridge regression, k-nearest
// neighbors and a decision tree classifier. All of them implement the
// core/model contracts so they plug into tuning, bagging and persistence
// without adapters.
package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// GaussianNB implements Gaussian Naive Bayes classification. It has no
// tunable hyperparameters beyond variance smoothing, which is why its
// search space is empty and an optimization run fits it exactly once.
type GaussianNB struct {
	state *model.StateManager

	varSmoothing float64

	classes_  []int
	priors_   []float64   // log class priors
	theta_    [][]float64 // per-class feature means
	variance_ [][]float64 // per-class feature variances
}

// GaussianNBOption is a functional option for GaussianNB.
type GaussianNBOption func(*GaussianNB)

// WithVarSmoothing sets the fraction of the largest feature variance added
// to all variances for numerical stability.
func WithVarSmoothing(smoothing float64) GaussianNBOption {
	return func(nb *GaussianNB) {
		nb.varSmoothing = smoothing
	}
}

// NewGaussianNB creates a GaussianNB classifier.
func NewGaussianNB(opts ...GaussianNBOption) *GaussianNB {
	nb := &GaussianNB{
		state:        model.NewStateManager(),
		varSmoothing: 1e-9,
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// Fit estimates per-class feature means, variances and class priors.
func (nb *GaussianNB) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkXY(X, y)
	if err != nil {
		return err
	}

	byClass := groupByClass(y, nSamples)
	nb.classes_ = sortedClasses(byClass)
	nClasses := len(nb.classes_)

	nb.priors_ = make([]float64, nClasses)
	nb.theta_ = make([][]float64, nClasses)
	nb.variance_ = make([][]float64, nClasses)

	// Largest feature variance over the whole dataset, for smoothing.
	var maxVar float64
	for j := 0; j < nFeatures; j++ {
		var sum, sumSq float64
		for i := 0; i < nSamples; i++ {
			v := X.At(i, j)
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(nSamples)
		if v := sumSq/float64(nSamples) - mean*mean; v > maxVar {
			maxVar = v
		}
	}
	smoothing := nb.varSmoothing * maxVar

	for c, class := range nb.classes_ {
		rows := byClass[class]
		nb.priors_[c] = math.Log(float64(len(rows)) / float64(nSamples))
		nb.theta_[c] = make([]float64, nFeatures)
		nb.variance_[c] = make([]float64, nFeatures)

		for j := 0; j < nFeatures; j++ {
			var sum float64
			for _, i := range rows {
				sum += X.At(i, j)
			}
			mean := sum / float64(len(rows))

			var ss float64
			for _, i := range rows {
				diff := X.At(i, j) - mean
				ss += diff * diff
			}
			nb.theta_[c][j] = mean
			nb.variance_[c][j] = ss/float64(len(rows)) + smoothing
			if nb.variance_[c][j] <= 0 {
				nb.variance_[c][j] = smoothing + 1e-12
			}
		}
	}

	nb.state.SetFitted(nSamples, nFeatures)
	return nil
}

// jointLogLikelihood returns the unnormalized log posterior per class.
func (nb *GaussianNB) jointLogLikelihood(X mat.Matrix, i int) []float64 {
	nFeatures := nb.state.NFeatures
	scores := make([]float64, len(nb.classes_))
	for c := range nb.classes_ {
		score := nb.priors_[c]
		for j := 0; j < nFeatures; j++ {
			diff := X.At(i, j) - nb.theta_[c][j]
			score -= 0.5 * (math.Log(2*math.Pi*nb.variance_[c][j]) + diff*diff/nb.variance_[c][j])
		}
		scores[c] = score
	}
	return scores
}

// Predict returns the most probable class per sample.
func (nb *GaussianNB) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !nb.state.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianNB", "Predict")
	}
	if err := checkFeatures(X, nb.state.NFeatures); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		scores := nb.jointLogLikelihood(X, i)
		best := 0
		for c := 1; c < len(scores); c++ {
			if scores[c] > scores[best] {
				best = c
			}
		}
		predictions.Set(i, 0, float64(nb.classes_[best]))
	}
	return predictions, nil
}

// PredictProba returns normalized class probabilities via log-sum-exp.
func (nb *GaussianNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !nb.state.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianNB", "PredictProba")
	}
	if err := checkFeatures(X, nb.state.NFeatures); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, len(nb.classes_), nil)
	for i := 0; i < nSamples; i++ {
		scores := nb.jointLogLikelihood(X, i)

		maxScore := scores[0]
		for _, s := range scores[1:] {
			if s > maxScore {
				maxScore = s
			}
		}
		var sum float64
		for c, s := range scores {
			scores[c] = math.Exp(s - maxScore)
			sum += scores[c]
		}
		for c := range scores {
			probas.Set(i, c, scores[c]/sum)
		}
	}
	return probas, nil
}

// Classes returns the sorted class labels seen during fitting.
func (nb *GaussianNB) Classes() []int {
	return nb.classes_
}

// Clone returns an unfitted copy with the same hyperparameters.
func (nb *GaussianNB) Clone() model.Estimator {
	return NewGaussianNB(WithVarSmoothing(nb.varSmoothing))
}

// GetParams returns the model hyperparameters.
func (nb *GaussianNB) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"var_smoothing": nb.varSmoothing,
	}
}

// SetParams sets the model hyperparameters.
func (nb *GaussianNB) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "var_smoothing":
			nb.varSmoothing = value.(float64)
		default:
			return errors.NewValueError("GaussianNB.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}

// Save serializes the fitted model to path.
func (nb *GaussianNB) Save(path string) error {
	return model.SaveModel(nb.exportState(), path)
}

// Load restores a fitted model from path.
func (nb *GaussianNB) Load(path string) error {
	var s gaussianNBState
	if err := model.LoadModel(&s, path); err != nil {
		return err
	}
	nb.importState(s)
	return nil
}

type gaussianNBState struct {
	State        model.StateManager
	VarSmoothing float64
	Classes      []int
	Priors       []float64
	Theta        [][]float64
	Variance     [][]float64
}

func (nb *GaussianNB) exportState() *gaussianNBState {
	return &gaussianNBState{
		State:        *nb.state,
		VarSmoothing: nb.varSmoothing,
		Classes:      nb.classes_,
		Priors:       nb.priors_,
		Theta:        nb.theta_,
		Variance:     nb.variance_,
	}
}

func (nb *GaussianNB) importState(s gaussianNBState) {
	state := s.State
	nb.state = &state
	nb.varSmoothing = s.VarSmoothing
	nb.classes_ = s.Classes
	nb.priors_ = s.Priors
	nb.theta_ = s.Theta
	nb.variance_ = s.Variance
}

// checkXY validates the shapes of a training pair.
func checkXY(X, y mat.Matrix) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptyData, "fit")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return 0, 0, errors.NewDimensionError("fit", 1, yCols, 1)
	}
	if yRows != nSamples {
		return 0, 0, errors.NewDimensionError("fit", nSamples, yRows, 0)
	}
	return nSamples, nFeatures, nil
}

// checkFeatures validates the feature count of a prediction input.
func checkFeatures(X mat.Matrix, want int) error {
	_, got := X.Dims()
	if got != want {
		return errors.NewDimensionError("predict", want, got, 1)
	}
	return nil
}

// groupByClass maps each class label to the row indices carrying it.
func groupByClass(y mat.Matrix, nSamples int) map[int][]int {
	byClass := make(map[int][]int)
	for i := 0; i < nSamples; i++ {
		label := int(y.At(i, 0))
		byClass[label] = append(byClass[label], i)
	}
	return byClass
}

// sortedClasses returns the class labels in ascending order.
func sortedClasses(byClass map[int][]int) []int {
	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}
