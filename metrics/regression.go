// Package metrics implements the scorers available to optimization runs:
// standard regression and classification metrics plus the confusion-matrix
// derivatives (tn, fp, fn, tp, lift, fpr, tpr, sup).
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// MSE computes the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE computes the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MAE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination.
// Returns 0 when the targets are constant and predictions deviate, matching
// the scikit-learn convention.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var mean float64
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		ssRes += diff * diff
		dev := yTrue.AtVec(i) - mean
		ssTot += dev * dev
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}

	return 1 - ssRes/ssTot, nil
}

// toVec converts an n×1 matrix to a VecDense.
func toVec(op string, m mat.Matrix) (*mat.VecDense, error) {
	rows, cols := m.Dims()
	if rows == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	if cols != 1 {
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}

	if v, ok := m.(*mat.VecDense); ok {
		return v, nil
	}

	vec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		vec.SetVec(i, m.At(i, 0))
	}
	return vec, nil
}
