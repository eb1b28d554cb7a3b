package optimize

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// gaussianProcess is the surrogate regression model for the guided phase.
// It is refit every iteration on all (encoded parameters, primary score)
// pairs observed so far. Inputs live in the unit hypercube, targets are
// standardized internally so the kernel width stays meaningful across
// metrics with very different scales.
type gaussianProcess struct {
	lengthScale float64
	noise       float64

	x     [][]float64
	chol  mat.Cholesky
	alpha *mat.VecDense
	yMean float64
	yStd  float64
	ready bool
}

func newGaussianProcess() *gaussianProcess {
	return &gaussianProcess{
		lengthScale: 0.3,
		noise:       1e-6,
	}
}

// kernel is the RBF kernel over unit-hypercube points.
func (gp *gaussianProcess) kernel(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Exp(-sum / (2 * gp.lengthScale * gp.lengthScale))
}

// Fit factorizes the kernel matrix over the observed points and
// precomputes the weight vector used by Predict. On a failed Cholesky
// factorization the diagonal noise is grown and the factorization
// retried, so near-duplicate observations cannot stall the search.
func (gp *gaussianProcess) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || len(y) != n {
		return errors.Wrap(errors.ErrEmptyData, "gaussian process fit")
	}
	gp.ready = false
	gp.x = x

	var sum float64
	for _, v := range y {
		sum += v
	}
	gp.yMean = sum / float64(n)

	var ss float64
	for _, v := range y {
		diff := v - gp.yMean
		ss += diff * diff
	}
	gp.yStd = math.Sqrt(ss / float64(n))
	if gp.yStd == 0 {
		gp.yStd = 1
	}

	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, gp.kernel(x[i], x[j]))
		}
	}

	noise := gp.noise
	factorized := false
	for attempt := 0; attempt < 6 && !factorized; attempt++ {
		for i := 0; i < n; i++ {
			k.SetSym(i, i, gp.kernel(x[i], x[i])+noise)
		}
		factorized = gp.chol.Factorize(k)
		noise *= 100
	}
	if !factorized {
		return errors.Wrap(errors.ErrSingularMatrix, "gaussian process kernel matrix")
	}

	standardized := mat.NewVecDense(n, nil)
	for i, v := range y {
		standardized.SetVec(i, (v-gp.yMean)/gp.yStd)
	}
	gp.alpha = mat.NewVecDense(n, nil)
	if err := gp.chol.SolveVecTo(gp.alpha, standardized); err != nil {
		return errors.Wrap(err, "gaussian process weight solve")
	}

	gp.ready = true
	return nil
}

// Predict returns the posterior mean and variance at an encoded point.
// Before the first successful Fit it returns the prior (0, 1).
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	if !gp.ready {
		return 0, 1
	}
	n := len(gp.x)

	kStar := mat.NewVecDense(n, nil)
	for i := range gp.x {
		kStar.SetVec(i, gp.kernel(x, gp.x[i]))
	}

	mean = gp.yMean + gp.yStd*mat.Dot(kStar, gp.alpha)

	v := mat.NewVecDense(n, nil)
	if err := gp.chol.SolveVecTo(v, kStar); err != nil {
		return mean, 1
	}
	variance = gp.kernel(x, x) - mat.Dot(kStar, v)
	if variance < 0 {
		variance = 0
	}
	return mean, variance * gp.yStd * gp.yStd
}
