// Package modelselection provides the data-splitting primitives used by the
// optimization lifecycle: k-fold and stratified k-fold cross-validation,
// single shuffle splits, train/test splitting and bootstrap resampling.
package modelselection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Splitter generates train/validation index pairs over a dataset.
type Splitter interface {
	Split(X, y mat.Matrix) []Fold
	NSplits() int
}

// Fold is a single train/validation split.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation.
type KFold struct {
	K       int
	Shuffle bool
	Seed    uint64
}

// NewKFold creates a k-fold splitter. Fewer than 2 splits falls back to the
// default of 5.
func NewKFold(k int, shuffle bool, seed uint64) *KFold {
	if k < 2 {
		k = 5
	}
	return &KFold{K: k, Shuffle: shuffle, Seed: seed}
}

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int {
	return kf.K
}

// Split generates train/validation indices for each fold.
func (kf *KFold) Split(X, _ mat.Matrix) []Fold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.K)
	foldSize := nSamples / kf.K
	remainder := nSamples % kf.K

	currentIdx := 0
	for i := 0; i < kf.K; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[currentIdx:currentIdx+testSize])

		trainIndices := make([]int, 0, nSamples-testSize)
		trainIndices = append(trainIndices, indices[:currentIdx]...)
		trainIndices = append(trainIndices, indices[currentIdx+testSize:]...)

		folds[i] = Fold{TrainIndices: trainIndices, TestIndices: testIndices}
		currentIdx += testSize
	}

	return folds
}

// StratifiedKFold implements k-fold cross-validation preserving the class
// distribution in every fold.
type StratifiedKFold struct {
	K       int
	Shuffle bool
	Seed    uint64
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(k int, shuffle bool, seed uint64) *StratifiedKFold {
	if k < 2 {
		k = 5
	}
	return &StratifiedKFold{K: k, Shuffle: shuffle, Seed: seed}
}

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int {
	return skf.K
}

// Split generates stratified train/validation indices for each fold.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) []Fold {
	nSamples, _ := X.Dims()

	// Group sample indices by class label, keeping first-seen label order
	// so the distribution across folds is deterministic.
	classIndices := make(map[float64][]int)
	var labelOrder []float64
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		if _, seen := classIndices[label]; !seen {
			labelOrder = append(labelOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(skf.Seed, skf.Seed))
		for _, label := range labelOrder {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]Fold, skf.K)

	// Deal every class round-robin style across folds.
	for _, label := range labelOrder {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.K
		remainder := nClass % skf.K

		currentIdx := 0
		for i := 0; i < skf.K; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			for j := 0; j < testSize && currentIdx < nClass; j++ {
				folds[i].TestIndices = append(folds[i].TestIndices, indices[currentIdx])
				currentIdx++
			}
		}
	}

	// Train sets are the complement of each fold's validation set.
	for i := 0; i < skf.K; i++ {
		testSet := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			testSet[idx] = true
		}
		for j := 0; j < nSamples; j++ {
			if !testSet[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}

	return folds
}

// ShuffleSplit produces a single random train/validation split. Used when
// the objective is configured with cv=1.
type ShuffleSplit struct {
	TestSize float64
	Seed     uint64
}

// NewShuffleSplit creates a single-split splitter. A test size outside
// (0, 1) falls back to the default of 0.2.
func NewShuffleSplit(testSize float64, seed uint64) *ShuffleSplit {
	if testSize <= 0 || testSize >= 1 {
		testSize = 0.2
	}
	return &ShuffleSplit{TestSize: testSize, Seed: seed}
}

// NSplits returns 1.
func (ss *ShuffleSplit) NSplits() int {
	return 1
}

// Split returns one shuffled train/validation split.
func (ss *ShuffleSplit) Split(X, _ mat.Matrix) []Fold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(ss.Seed, ss.Seed))
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nTest := int(float64(nSamples) * ss.TestSize)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= nSamples {
		nTest = nSamples - 1
	}

	return []Fold{{
		TrainIndices: indices[nTest:],
		TestIndices:  indices[:nTest],
	}}
}
