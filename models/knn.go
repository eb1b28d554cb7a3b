package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// KNNClassifier implements k-nearest-neighbors classification with
// Euclidean distance. Its search space tunes the neighbor count and the
// vote weighting.
type KNNClassifier struct {
	state *model.StateManager

	nNeighbors int
	weights    string // "uniform" or "distance"

	x_       *mat.Dense
	y_       []int
	classes_ []int
}

// KNNOption is a functional option for KNNClassifier.
type KNNOption func(*KNNClassifier)

// WithNNeighbors sets the number of neighbors consulted per prediction.
func WithNNeighbors(k int) KNNOption {
	return func(knn *KNNClassifier) {
		knn.nNeighbors = k
	}
}

// WithWeights sets the vote weighting, "uniform" or "distance".
func WithWeights(weights string) KNNOption {
	return func(knn *KNNClassifier) {
		knn.weights = weights
	}
}

// NewKNNClassifier creates a KNNClassifier.
func NewKNNClassifier(opts ...KNNOption) *KNNClassifier {
	knn := &KNNClassifier{
		state:      model.NewStateManager(),
		nNeighbors: 5,
		weights:    "uniform",
	}
	for _, opt := range opts {
		opt(knn)
	}
	return knn
}

// Fit memorizes the training set.
func (knn *KNNClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkXY(X, y)
	if err != nil {
		return err
	}
	if knn.nNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", knn.nNeighbors)
	}
	if knn.nNeighbors > nSamples {
		return errors.NewValidationError("n_neighbors", "must not exceed the number of training samples", knn.nNeighbors)
	}
	if knn.weights != "uniform" && knn.weights != "distance" {
		return errors.NewValidationError("weights", "must be 'uniform' or 'distance'", knn.weights)
	}

	knn.x_ = mat.DenseCopyOf(X)
	knn.y_ = make([]int, nSamples)
	byClass := groupByClass(y, nSamples)
	for i := 0; i < nSamples; i++ {
		knn.y_[i] = int(y.At(i, 0))
	}
	knn.classes_ = sortedClasses(byClass)

	knn.state.SetFitted(nSamples, nFeatures)
	return nil
}

type neighbor struct {
	index    int
	distance float64
}

// nearest returns the k training points closest to row i of X.
func (knn *KNNClassifier) nearest(X mat.Matrix, i int) []neighbor {
	nTrain := knn.state.NSamples
	nFeatures := knn.state.NFeatures

	neighbors := make([]neighbor, nTrain)
	for t := 0; t < nTrain; t++ {
		var sum float64
		for j := 0; j < nFeatures; j++ {
			diff := X.At(i, j) - knn.x_.At(t, j)
			sum += diff * diff
		}
		neighbors[t] = neighbor{index: t, distance: math.Sqrt(sum)}
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].distance == neighbors[b].distance {
			return neighbors[a].index < neighbors[b].index
		}
		return neighbors[a].distance < neighbors[b].distance
	})
	return neighbors[:knn.nNeighbors]
}

// classVotes accumulates the weighted neighbor votes per class.
func (knn *KNNClassifier) classVotes(neighbors []neighbor) []float64 {
	classIndex := make(map[int]int, len(knn.classes_))
	for c, class := range knn.classes_ {
		classIndex[class] = c
	}

	votes := make([]float64, len(knn.classes_))
	for _, nb := range neighbors {
		weight := 1.0
		if knn.weights == "distance" {
			// An exact match dominates the vote.
			if nb.distance == 0 {
				weight = 1e12
			} else {
				weight = 1 / nb.distance
			}
		}
		votes[classIndex[knn.y_[nb.index]]] += weight
	}
	return votes
}

// Predict returns the majority-vote class per sample.
func (knn *KNNClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !knn.state.IsFitted() {
		return nil, errors.NewNotFittedError("KNNClassifier", "Predict")
	}
	if err := checkFeatures(X, knn.state.NFeatures); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		votes := knn.classVotes(knn.nearest(X, i))
		best := 0
		for c := 1; c < len(votes); c++ {
			if votes[c] > votes[best] {
				best = c
			}
		}
		predictions.Set(i, 0, float64(knn.classes_[best]))
	}
	return predictions, nil
}

// PredictProba returns the normalized vote shares per class.
func (knn *KNNClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !knn.state.IsFitted() {
		return nil, errors.NewNotFittedError("KNNClassifier", "PredictProba")
	}
	if err := checkFeatures(X, knn.state.NFeatures); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, len(knn.classes_), nil)
	for i := 0; i < nSamples; i++ {
		votes := knn.classVotes(knn.nearest(X, i))
		var total float64
		for _, v := range votes {
			total += v
		}
		for c, v := range votes {
			probas.Set(i, c, v/total)
		}
	}
	return probas, nil
}

// Classes returns the sorted class labels seen during fitting.
func (knn *KNNClassifier) Classes() []int {
	return knn.classes_
}

// Clone returns an unfitted copy with the same hyperparameters.
func (knn *KNNClassifier) Clone() model.Estimator {
	return NewKNNClassifier(WithNNeighbors(knn.nNeighbors), WithWeights(knn.weights))
}

// GetParams returns the model hyperparameters.
func (knn *KNNClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": knn.nNeighbors,
		"weights":     knn.weights,
	}
}

// SetParams sets the model hyperparameters.
func (knn *KNNClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_neighbors":
			knn.nNeighbors = value.(int)
		case "weights":
			knn.weights = value.(string)
		default:
			return errors.NewValueError("KNNClassifier.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}

type knnState struct {
	State      model.StateManager
	NNeighbors int
	Weights    string
	XData      []float64
	XRows      int
	XCols      int
	Y          []int
	Classes    []int
}

// Save serializes the fitted model to path.
func (knn *KNNClassifier) Save(path string) error {
	s := &knnState{
		State:      *knn.state,
		NNeighbors: knn.nNeighbors,
		Weights:    knn.weights,
		Y:          knn.y_,
		Classes:    knn.classes_,
	}
	if knn.x_ != nil {
		s.XRows, s.XCols = knn.x_.Dims()
		s.XData = make([]float64, s.XRows*s.XCols)
		copy(s.XData, knn.x_.RawMatrix().Data)
	}
	return model.SaveModel(s, path)
}

// Load restores a fitted model from path.
func (knn *KNNClassifier) Load(path string) error {
	var s knnState
	if err := model.LoadModel(&s, path); err != nil {
		return err
	}
	state := s.State
	knn.state = &state
	knn.nNeighbors = s.NNeighbors
	knn.weights = s.Weights
	knn.y_ = s.Y
	knn.classes_ = s.Classes
	if s.XRows > 0 {
		knn.x_ = mat.NewDense(s.XRows, s.XCols, s.XData)
	}
	return nil
}
