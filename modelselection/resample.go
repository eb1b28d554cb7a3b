package modelselection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Bootstrap draws nSamples indices uniformly with replacement. Each call
// advances the generator, so successive bagging rounds see distinct samples.
func Bootstrap(nSamples int, r *rand.Rand) []int {
	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = r.IntN(nSamples)
	}
	return indices
}

// Subset copies the rows of m selected by indices, in order. Indices may
// repeat, which is what bootstrap resampling relies on.
func Subset(m mat.Matrix, indices []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(idx, j))
		}
	}
	return out
}

// SubsetVec copies the rows of an n-by-1 target column selected by indices.
func SubsetVec(y mat.Matrix, indices []int) *mat.VecDense {
	out := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		out.SetVec(i, y.At(idx, 0))
	}
	return out
}
