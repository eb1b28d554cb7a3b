// Package preprocessing provides the data transformations applied before
// model fitting. Distance and penalty based models (KNN, Ridge) are marked
// as needing scaling in the model registry; StandardScaler is what the
// runner applies for them.
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Statistics are learned from the training split only and reapplied to
// every other split, so no test information leaks into fitting.
type StandardScaler struct {
	state *model.StateManager

	withMean bool
	withStd  bool

	mean_  []float64
	scale_ []float64
}

// ScalerOption is a functional option for StandardScaler.
type ScalerOption func(*StandardScaler)

// WithMean sets whether features are centered before scaling.
func WithMean(center bool) ScalerOption {
	return func(s *StandardScaler) {
		s.withMean = center
	}
}

// WithStd sets whether features are divided by their standard deviation.
func WithStd(scale bool) ScalerOption {
	return func(s *StandardScaler) {
		s.withStd = scale
	}
}

// NewStandardScaler creates a StandardScaler.
func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{
		state:    model.NewStateManager(),
		withMean: true,
		withStd:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit learns per-feature means and standard deviations from X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "scaler fit")
	}

	s.mean_ = make([]float64, nFeatures)
	s.scale_ = make([]float64, nFeatures)

	for j := 0; j < nFeatures; j++ {
		var sum float64
		for i := 0; i < nSamples; i++ {
			sum += X.At(i, j)
		}
		s.mean_[j] = sum / float64(nSamples)

		var ss float64
		for i := 0; i < nSamples; i++ {
			diff := X.At(i, j) - s.mean_[j]
			ss += diff * diff
		}
		s.scale_[j] = math.Sqrt(ss / float64(nSamples))
		// Constant features pass through unscaled.
		if s.scale_[j] == 0 {
			s.scale_[j] = 1
		}
	}

	s.state.SetFitted(nSamples, nFeatures)
	return nil
}

// Transform applies the learned standardization to X.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != s.state.NFeatures {
		return nil, errors.NewDimensionError("transform", s.state.NFeatures, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			v := X.At(i, j)
			if s.withMean {
				v -= s.mean_[j]
			}
			if s.withStd {
				v /= s.scale_[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// FitTransform fits the scaler and transforms X in one call.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized values back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != s.state.NFeatures {
		return nil, errors.NewDimensionError("inverse_transform", s.state.NFeatures, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			v := X.At(i, j)
			if s.withStd {
				v *= s.scale_[j]
			}
			if s.withMean {
				v += s.mean_[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// Mean returns the learned per-feature means.
func (s *StandardScaler) Mean() []float64 {
	return s.mean_
}

// Scale returns the learned per-feature standard deviations.
func (s *StandardScaler) Scale() []float64 {
	return s.scale_
}

type scalerState struct {
	State    model.StateManager
	WithMean bool
	WithStd  bool
	Mean     []float64
	Scale    []float64
}

// Save serializes the fitted scaler to path.
func (s *StandardScaler) Save(path string) error {
	return model.SaveModel(&scalerState{
		State:    *s.state,
		WithMean: s.withMean,
		WithStd:  s.withStd,
		Mean:     s.mean_,
		Scale:    s.scale_,
	}, path)
}

// Load restores a fitted scaler from path.
func (s *StandardScaler) Load(path string) error {
	var st scalerState
	if err := model.LoadModel(&st, path); err != nil {
		return err
	}
	state := st.State
	s.state = &state
	s.withMean = st.WithMean
	s.withStd = st.WithStd
	s.mean_ = st.Mean
	s.scale_ = st.Scale
	return nil
}
