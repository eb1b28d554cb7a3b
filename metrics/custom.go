package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// Confusion-matrix derivatives for binary classification. Formulas follow
// the conventions used for model scoring reports: positive class is 1 and
// division by an empty denominator yields 0 with a warning.

// TrueNegatives counts samples correctly predicted as the negative class.
func TrueNegatives(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return float64(c.TN), nil
}

// FalsePositives counts negative samples predicted as positive.
func FalsePositives(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return float64(c.FP), nil
}

// FalseNegatives counts positive samples predicted as negative.
func FalseNegatives(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return float64(c.FN), nil
}

// TruePositives counts samples correctly predicted as the positive class.
func TruePositives(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return float64(c.TP), nil
}

// Lift is the precision of the positive predictions relative to the
// prevalence of positives: (tp/(tp+fp)) / ((tp+fn)/total).
func Lift(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.TP+c.FP == 0 || c.TP+c.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("lift", "empty denominator", 0))
		return 0, nil
	}
	precision := float64(c.TP) / float64(c.TP+c.FP)
	prevalence := float64(c.TP+c.FN) / float64(c.Total())
	return precision / prevalence, nil
}

// FalsePositiveRate computes fp / (fp + tn).
func FalsePositiveRate(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.FP+c.TN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("fpr", "no negatives in data", 0))
		return 0, nil
	}
	return float64(c.FP) / float64(c.FP+c.TN), nil
}

// TruePositiveRate computes tp / (tp + fn). Identical to Recall; exposed
// under its ROC name for report consumers.
func TruePositiveRate(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.TP+c.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("tpr", "no positives in data", 0))
		return 0, nil
	}
	return float64(c.TP) / float64(c.TP+c.FN), nil
}

// Support computes the fraction of samples predicted positive:
// (tp + fp) / total.
func Support(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return float64(c.TP+c.FP) / float64(c.Total()), nil
}
