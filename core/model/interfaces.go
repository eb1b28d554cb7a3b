// Package model defines the estimator contracts shared by every model that
// can take part in an optimization run.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for trainable models.
type Fitter interface {
	// Fit trains the model on X with targets y.
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that can predict.
type Predictor interface {
	// Predict returns predictions for X, one row per sample.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is the minimal contract the optimization lifecycle needs:
// something it can fit, predict with, and clone for an independent refit.
type Estimator interface {
	Fitter
	Predictor

	// Clone returns an unfitted copy with the same hyperparameters.
	// Refits (best-params refit, bagging resamples) operate on clones so
	// the original is never overwritten mid-run.
	Clone() Estimator

	// SetParams applies a hyperparameter assignment. Unknown keys return
	// an error so a malformed search space fails fast.
	SetParams(params map[string]interface{}) error

	// GetParams returns the current hyperparameters.
	GetParams() map[string]interface{}
}

// Classifier is an Estimator for classification tasks.
type Classifier interface {
	Estimator

	// PredictProba returns per-class probability estimates,
	// shape (n_samples, n_classes).
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique class labels seen during fitting.
	Classes() []int
}

// Regressor is an Estimator for regression tasks. The interface exists so
// task/metric compatibility can be checked at configuration time.
type Regressor interface {
	Estimator
}

// Transformer is the interface for data transformations (scalers, feature
// selectors).
type Transformer interface {
	// Fit learns the transformation parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits and transforms in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// FeatureImporter is implemented by estimators that expose per-feature
// importances (tree impurity gains, absolute linear coefficients). Used for
// importance-based feature selection.
type FeatureImporter interface {
	// FeatureImportances returns one non-negative weight per input feature.
	FeatureImportances() ([]float64, error)
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
