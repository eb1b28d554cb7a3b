package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// DecisionTreeClassifier implements a CART-style binary decision tree.
// Its search space tunes depth, the minimum split size and the impurity
// criterion.
type DecisionTreeClassifier struct {
	state *model.StateManager

	maxDepth        int // 0 means unbounded
	minSamplesSplit int
	criterion       string // "gini" or "entropy"

	root_        *treeNode
	classes_     []int
	importances_ []float64
}

type treeNode struct {
	// Internal nodes split on Feature at Threshold, sending smaller or
	// equal values left.
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode

	// Leaves carry the class distribution of their training samples.
	Leaf  bool
	Proba []float64
}

// TreeOption is a functional option for DecisionTreeClassifier.
type TreeOption func(*DecisionTreeClassifier)

// WithMaxDepth bounds the tree depth. Zero leaves it unbounded.
func WithMaxDepth(depth int) TreeOption {
	return func(t *DecisionTreeClassifier) {
		t.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the smallest node size still considered for
// splitting.
func WithMinSamplesSplit(n int) TreeOption {
	return func(t *DecisionTreeClassifier) {
		t.minSamplesSplit = n
	}
}

// WithCriterion sets the impurity criterion, "gini" or "entropy".
func WithCriterion(criterion string) TreeOption {
	return func(t *DecisionTreeClassifier) {
		t.criterion = criterion
	}
}

// NewDecisionTreeClassifier creates a DecisionTreeClassifier.
func NewDecisionTreeClassifier(opts ...TreeOption) *DecisionTreeClassifier {
	t := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		maxDepth:        0,
		minSamplesSplit: 2,
		criterion:       "gini",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit grows the tree greedily by best impurity decrease.
func (t *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkXY(X, y)
	if err != nil {
		return err
	}
	if t.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must not be negative", t.maxDepth)
	}
	if t.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", t.minSamplesSplit)
	}
	if t.criterion != "gini" && t.criterion != "entropy" {
		return errors.NewValidationError("criterion", "must be 'gini' or 'entropy'", t.criterion)
	}

	t.classes_ = sortedClasses(groupByClass(y, nSamples))
	classIndex := make(map[int]int, len(t.classes_))
	for c, class := range t.classes_ {
		classIndex[class] = c
	}

	labels := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		labels[i] = classIndex[int(y.At(i, 0))]
	}
	rows := make([]int, nSamples)
	for i := range rows {
		rows[i] = i
	}

	t.importances_ = make([]float64, nFeatures)
	t.root_ = t.grow(X, labels, rows, 1)
	t.normalizeImportances()

	t.state.SetFitted(nSamples, nFeatures)
	return nil
}

// impurity computes gini or entropy from class counts.
func (t *DecisionTreeClassifier) impurity(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	var value float64
	if t.criterion == "entropy" {
		for _, c := range counts {
			if c > 0 {
				p := c / total
				value -= p * math.Log2(p)
			}
		}
		return value
	}
	value = 1
	for _, c := range counts {
		p := c / total
		value -= p * p
	}
	return value
}

func (t *DecisionTreeClassifier) leaf(labels []int, rows []int) *treeNode {
	proba := make([]float64, len(t.classes_))
	for _, i := range rows {
		proba[labels[i]]++
	}
	for c := range proba {
		proba[c] /= float64(len(rows))
	}
	return &treeNode{Leaf: true, Proba: proba}
}

func (t *DecisionTreeClassifier) grow(X mat.Matrix, labels []int, rows []int, depth int) *treeNode {
	counts := make([]float64, len(t.classes_))
	for _, i := range rows {
		counts[labels[i]]++
	}
	total := float64(len(rows))
	parentImpurity := t.impurity(counts, total)

	pure := false
	for _, c := range counts {
		if c == total {
			pure = true
		}
	}
	if pure || len(rows) < t.minSamplesSplit || (t.maxDepth > 0 && depth > t.maxDepth) {
		return t.leaf(labels, rows)
	}

	_, nFeatures := X.Dims()
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	for j := 0; j < nFeatures; j++ {
		values := make([]float64, len(rows))
		for k, i := range rows {
			values[k] = X.At(i, j)
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		for k := 0; k+1 < len(sorted); k++ {
			if sorted[k] == sorted[k+1] {
				continue
			}
			threshold := (sorted[k] + sorted[k+1]) / 2

			leftCounts := make([]float64, len(t.classes_))
			var nLeft float64
			for idx, i := range rows {
				if values[idx] <= threshold {
					leftCounts[labels[i]]++
					nLeft++
				}
			}
			nRight := total - nLeft
			if nLeft == 0 || nRight == 0 {
				continue
			}
			rightCounts := make([]float64, len(t.classes_))
			for c := range counts {
				rightCounts[c] = counts[c] - leftCounts[c]
			}

			gain := parentImpurity -
				(nLeft/total)*t.impurity(leftCounts, nLeft) -
				(nRight/total)*t.impurity(rightCounts, nRight)
			if gain > bestGain {
				bestGain = gain
				bestFeature = j
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return t.leaf(labels, rows)
	}

	var left, right []int
	for _, i := range rows {
		if X.At(i, bestFeature) <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	t.importances_[bestFeature] += total * bestGain

	return &treeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      t.grow(X, labels, left, depth+1),
		Right:     t.grow(X, labels, right, depth+1),
	}
}

func (t *DecisionTreeClassifier) normalizeImportances() {
	var total float64
	for _, v := range t.importances_ {
		total += v
	}
	if total == 0 {
		return
	}
	for j := range t.importances_ {
		t.importances_[j] /= total
	}
}

func (t *DecisionTreeClassifier) traverse(X mat.Matrix, i int) *treeNode {
	node := t.root_
	for !node.Leaf {
		if X.At(i, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// Predict returns the majority class of each sample's leaf.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	if err := checkFeatures(X, t.state.NFeatures); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		proba := t.traverse(X, i).Proba
		best := 0
		for c := 1; c < len(proba); c++ {
			if proba[c] > proba[best] {
				best = c
			}
		}
		predictions.Set(i, 0, float64(t.classes_[best]))
	}
	return predictions, nil
}

// PredictProba returns each sample's leaf class distribution.
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	if err := checkFeatures(X, t.state.NFeatures); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, len(t.classes_), nil)
	for i := 0; i < nSamples; i++ {
		proba := t.traverse(X, i).Proba
		for c, p := range proba {
			probas.Set(i, c, p)
		}
	}
	return probas, nil
}

// Classes returns the sorted class labels seen during fitting.
func (t *DecisionTreeClassifier) Classes() []int {
	return t.classes_
}

// FeatureImportances returns normalized impurity-decrease importances.
func (t *DecisionTreeClassifier) FeatureImportances() ([]float64, error) {
	if !t.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "FeatureImportances")
	}
	return t.importances_, nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (t *DecisionTreeClassifier) Clone() model.Estimator {
	return NewDecisionTreeClassifier(
		WithMaxDepth(t.maxDepth),
		WithMinSamplesSplit(t.minSamplesSplit),
		WithCriterion(t.criterion),
	)
}

// GetParams returns the model hyperparameters.
func (t *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         t.maxDepth,
		"min_samples_split": t.minSamplesSplit,
		"criterion":         t.criterion,
	}
}

// SetParams sets the model hyperparameters.
func (t *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "max_depth":
			t.maxDepth = value.(int)
		case "min_samples_split":
			t.minSamplesSplit = value.(int)
		case "criterion":
			t.criterion = value.(string)
		default:
			return errors.NewValueError("DecisionTreeClassifier.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}

type treeState struct {
	State           model.StateManager
	MaxDepth        int
	MinSamplesSplit int
	Criterion       string
	Root            *treeNode
	Classes         []int
	Importances     []float64
}

// Save serializes the fitted model to path.
func (t *DecisionTreeClassifier) Save(path string) error {
	return model.SaveModel(&treeState{
		State:           *t.state,
		MaxDepth:        t.maxDepth,
		MinSamplesSplit: t.minSamplesSplit,
		Criterion:       t.criterion,
		Root:            t.root_,
		Classes:         t.classes_,
		Importances:     t.importances_,
	}, path)
}

// Load restores a fitted model from path.
func (t *DecisionTreeClassifier) Load(path string) error {
	var s treeState
	if err := model.LoadModel(&s, path); err != nil {
		return err
	}
	state := s.State
	t.state = &state
	t.maxDepth = s.MaxDepth
	t.minSamplesSplit = s.MinSamplesSplit
	t.criterion = s.Criterion
	t.root_ = s.Root
	t.classes_ = s.Classes
	t.importances_ = s.Importances
	return nil
}
