package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// Accuracy computes the fraction of exactly matching labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionCounts holds the binary confusion matrix in the sklearn ravel
// order (tn, fp, fn, tp). The positive class is label 1.
type ConfusionCounts struct {
	TN, FP, FN, TP int
}

// Total returns the number of samples in the matrix.
func (c ConfusionCounts) Total() int {
	return c.TN + c.FP + c.FN + c.TP
}

// ConfusionMatrix computes the binary confusion counts for labels {0, 1}.
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (ConfusionCounts, error) {
	n := yTrue.Len()
	if n == 0 {
		return ConfusionCounts{}, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return ConfusionCounts{}, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	var c ConfusionCounts
	for i := 0; i < n; i++ {
		truth := yTrue.AtVec(i) == 1
		pred := yPred.AtVec(i) == 1
		switch {
		case truth && pred:
			c.TP++
		case truth && !pred:
			c.FN++
		case !truth && pred:
			c.FP++
		default:
			c.TN++
		}
	}
	return c, nil
}

// Precision computes tp / (tp + fp). Emits an UndefinedMetricWarning and
// returns 0 when there are no positive predictions.
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.TP+c.FP == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positives", 0))
		return 0, nil
	}
	return float64(c.TP) / float64(c.TP+c.FP), nil
}

// Recall computes tp / (tp + fn). Emits an UndefinedMetricWarning and
// returns 0 when there are no true positives in the data.
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.TP+c.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true positives", 0))
		return 0, nil
	}
	return float64(c.TP) / float64(c.TP+c.FN), nil
}

// F1 computes the harmonic mean of precision and recall.
func F1(yTrue, yPred *mat.VecDense) (float64, error) {
	precision, err := Precision(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	recall, err := Recall(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if precision+recall == 0 {
		return 0, nil
	}
	return 2 * precision * recall / (precision + recall), nil
}

// BinaryLogLoss computes the negative log-likelihood of binary labels given
// predicted positive-class probabilities. Probabilities are clipped to
// [eps, 1-eps] to avoid log(0).
func BinaryLogLoss(yTrue, yProba *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	if yProba.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yProba.Len(), 0)
	}

	const eps = 1e-15
	var loss float64
	for i := 0; i < n; i++ {
		p := yProba.AtVec(i)
		if p < eps {
			p = eps
		} else if p > 1-eps {
			p = 1 - eps
		}
		if yTrue.AtVec(i) == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(n), nil
}

// AUC computes the area under the ROC curve from positive-class scores,
// using the rank-statistic formulation with midrank tie handling.
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yScore.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yScore.Len(), 0)
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("auc", "only one class present", 0.5))
		return 0.5, nil
	}

	// Count pairwise wins of positives over negatives; ties count half.
	var wins float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != 1 {
			continue
		}
		for j := 0; j < n; j++ {
			if yTrue.AtVec(j) == 1 {
				continue
			}
			switch {
			case yScore.AtVec(i) > yScore.AtVec(j):
				wins++
			case yScore.AtVec(i) == yScore.AtVec(j):
				wins += 0.5
			}
		}
	}
	return wins / float64(nPos*nNeg), nil
}
