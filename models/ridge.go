package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// Ridge implements L2-regularized linear regression solved in closed form.
// Its search space tunes alpha log-uniformly.
type Ridge struct {
	state *model.StateManager

	alpha        float64
	fitIntercept bool

	coef_      []float64
	intercept_ float64
}

// RidgeOption is a functional option for Ridge.
type RidgeOption func(*Ridge)

// WithAlpha sets the regularization strength. Larger shrinks harder.
func WithAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) {
		r.alpha = alpha
	}
}

// WithFitIntercept sets whether an intercept term is estimated.
func WithFitIntercept(fit bool) RidgeOption {
	return func(r *Ridge) {
		r.fitIntercept = fit
	}
}

// NewRidge creates a Ridge regressor.
func NewRidge(opts ...RidgeOption) *Ridge {
	r := &Ridge{
		state:        model.NewStateManager(),
		alpha:        1.0,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit solves (X'X + alpha*I) w = X'y on centered data. Centering keeps the
// intercept out of the penalty.
func (r *Ridge) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := checkXY(X, y)
	if err != nil {
		return err
	}
	if r.alpha < 0 {
		return errors.NewValidationError("alpha", "must not be negative", r.alpha)
	}

	colMeans := make([]float64, nFeatures)
	var yMean float64
	if r.fitIntercept {
		for j := 0; j < nFeatures; j++ {
			var sum float64
			for i := 0; i < nSamples; i++ {
				sum += X.At(i, j)
			}
			colMeans[j] = sum / float64(nSamples)
		}
		for i := 0; i < nSamples; i++ {
			yMean += y.At(i, 0)
		}
		yMean /= float64(nSamples)
	}

	centered := mat.NewDense(nSamples, nFeatures, nil)
	target := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			centered.Set(i, j, X.At(i, j)-colMeans[j])
		}
		target.SetVec(i, y.At(i, 0)-yMean)
	}

	gram := mat.NewSymDense(nFeatures, nil)
	for j := 0; j < nFeatures; j++ {
		for k := j; k < nFeatures; k++ {
			var sum float64
			for i := 0; i < nSamples; i++ {
				sum += centered.At(i, j) * centered.At(i, k)
			}
			if j == k {
				sum += r.alpha
			}
			gram.SetSym(j, k, sum)
		}
	}

	xty := mat.NewVecDense(nFeatures, nil)
	for j := 0; j < nFeatures; j++ {
		var sum float64
		for i := 0; i < nSamples; i++ {
			sum += centered.At(i, j) * target.AtVec(i)
		}
		xty.SetVec(j, sum)
	}

	var chol mat.Cholesky
	if !chol.Factorize(gram) {
		return errors.Wrap(errors.ErrSingularMatrix, "ridge normal equations")
	}
	coef := mat.NewVecDense(nFeatures, nil)
	if err := chol.SolveVecTo(coef, xty); err != nil {
		return errors.Wrap(err, "ridge solve")
	}

	r.coef_ = make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		r.coef_[j] = coef.AtVec(j)
	}
	r.intercept_ = yMean
	for j := 0; j < nFeatures; j++ {
		r.intercept_ -= r.coef_[j] * colMeans[j]
	}
	if !r.fitIntercept {
		r.intercept_ = 0
	}

	r.state.SetFitted(nSamples, nFeatures)
	return nil
}

// Predict returns the linear predictions as an n-by-1 column.
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}
	if err := checkFeatures(X, r.state.NFeatures); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		v := r.intercept_
		for j := 0; j < nFeatures; j++ {
			v += X.At(i, j) * r.coef_[j]
		}
		predictions.Set(i, 0, v)
	}
	return predictions, nil
}

// Coef returns the fitted coefficients.
func (r *Ridge) Coef() []float64 {
	return r.coef_
}

// Intercept returns the fitted intercept.
func (r *Ridge) Intercept() float64 {
	return r.intercept_
}

// FeatureImportances returns absolute coefficient magnitudes.
func (r *Ridge) FeatureImportances() ([]float64, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "FeatureImportances")
	}
	importances := make([]float64, len(r.coef_))
	for j, c := range r.coef_ {
		if c < 0 {
			c = -c
		}
		importances[j] = c
	}
	return importances, nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (r *Ridge) Clone() model.Estimator {
	return NewRidge(WithAlpha(r.alpha), WithFitIntercept(r.fitIntercept))
}

// GetParams returns the model hyperparameters.
func (r *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         r.alpha,
		"fit_intercept": r.fitIntercept,
	}
}

// SetParams sets the model hyperparameters.
func (r *Ridge) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "alpha":
			r.alpha = value.(float64)
		case "fit_intercept":
			r.fitIntercept = value.(bool)
		default:
			return errors.NewValueError("Ridge.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}

type ridgeState struct {
	State        model.StateManager
	Alpha        float64
	FitIntercept bool
	Coef         []float64
	Intercept    float64
}

// Save serializes the fitted model to path.
func (r *Ridge) Save(path string) error {
	return model.SaveModel(&ridgeState{
		State:        *r.state,
		Alpha:        r.alpha,
		FitIntercept: r.fitIntercept,
		Coef:         r.coef_,
		Intercept:    r.intercept_,
	}, path)
}

// Load restores a fitted model from path.
func (r *Ridge) Load(path string) error {
	var s ridgeState
	if err := model.LoadModel(&s, path); err != nil {
		return err
	}
	state := s.State
	r.state = &state
	r.alpha = s.Alpha
	r.fitIntercept = s.FitIntercept
	r.coef_ = s.Coef
	r.intercept_ = s.Intercept
	return nil
}
