// Package featureselection implements the pre-training feature filters:
// a low-variance filter, a collinearity filter and importance-based
// selection driven by a fitted estimator.
package featureselection

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// selectColumns copies the columns of X listed in support, in order.
func selectColumns(X mat.Matrix, support []int) *mat.Dense {
	nSamples, _ := X.Dims()
	out := mat.NewDense(nSamples, len(support), nil)
	for i := 0; i < nSamples; i++ {
		for k, j := range support {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out
}

// VarianceThreshold drops features whose variance is at or below the
// configured threshold. The default threshold 0 removes only constant
// features.
type VarianceThreshold struct {
	state *model.StateManager

	threshold float64
	support_  []int
}

// NewVarianceThreshold creates a VarianceThreshold filter.
func NewVarianceThreshold(threshold float64) *VarianceThreshold {
	return &VarianceThreshold{state: model.NewStateManager(), threshold: threshold}
}

// Fit computes per-feature variances and records the surviving columns.
func (v *VarianceThreshold) Fit(X mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "variance threshold fit")
	}
	if v.threshold < 0 {
		return errors.NewValidationError("threshold", "must not be negative", v.threshold)
	}

	v.support_ = v.support_[:0]
	for j := 0; j < nFeatures; j++ {
		var sum, sumSq float64
		for i := 0; i < nSamples; i++ {
			x := X.At(i, j)
			sum += x
			sumSq += x * x
		}
		mean := sum / float64(nSamples)
		variance := sumSq/float64(nSamples) - mean*mean
		if variance > v.threshold {
			v.support_ = append(v.support_, j)
		}
	}

	v.state.SetFitted(nSamples, nFeatures)
	return nil
}

// Transform keeps only the surviving columns.
func (v *VarianceThreshold) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !v.state.IsFitted() {
		return nil, errors.NewNotFittedError("VarianceThreshold", "Transform")
	}
	if _, nFeatures := X.Dims(); nFeatures != v.state.NFeatures {
		return nil, errors.NewDimensionError("transform", v.state.NFeatures, nFeatures, 1)
	}
	return selectColumns(X, v.support_), nil
}

// FitTransform fits and transforms in one call.
func (v *VarianceThreshold) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := v.Fit(X); err != nil {
		return nil, err
	}
	return v.Transform(X)
}

// Support returns the indices of the kept features.
func (v *VarianceThreshold) Support() []int {
	return v.support_
}

// CollinearFilter drops the later feature of every pair whose absolute
// Pearson correlation exceeds the configured maximum.
type CollinearFilter struct {
	state *model.StateManager

	maxCorrelation float64
	support_       []int
}

// NewCollinearFilter creates a CollinearFilter.
func NewCollinearFilter(maxCorrelation float64) *CollinearFilter {
	return &CollinearFilter{state: model.NewStateManager(), maxCorrelation: maxCorrelation}
}

// Fit computes pairwise correlations and records the surviving columns.
func (c *CollinearFilter) Fit(X mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "collinear filter fit")
	}
	if c.maxCorrelation <= 0 || c.maxCorrelation > 1 {
		return errors.NewValidationError("max_correlation", "must be in (0, 1]", c.maxCorrelation)
	}

	means := make([]float64, nFeatures)
	stds := make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		var sum float64
		for i := 0; i < nSamples; i++ {
			sum += X.At(i, j)
		}
		means[j] = sum / float64(nSamples)
		var ss float64
		for i := 0; i < nSamples; i++ {
			diff := X.At(i, j) - means[j]
			ss += diff * diff
		}
		stds[j] = math.Sqrt(ss / float64(nSamples))
	}

	dropped := make([]bool, nFeatures)
	for j := 0; j < nFeatures; j++ {
		if dropped[j] {
			continue
		}
		for k := j + 1; k < nFeatures; k++ {
			if dropped[k] || stds[j] == 0 || stds[k] == 0 {
				continue
			}
			var cov float64
			for i := 0; i < nSamples; i++ {
				cov += (X.At(i, j) - means[j]) * (X.At(i, k) - means[k])
			}
			cov /= float64(nSamples)
			if math.Abs(cov/(stds[j]*stds[k])) > c.maxCorrelation {
				dropped[k] = true
			}
		}
	}

	c.support_ = c.support_[:0]
	for j := 0; j < nFeatures; j++ {
		if !dropped[j] {
			c.support_ = append(c.support_, j)
		}
	}

	c.state.SetFitted(nSamples, nFeatures)
	return nil
}

// Transform keeps only the surviving columns.
func (c *CollinearFilter) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotFittedError("CollinearFilter", "Transform")
	}
	if _, nFeatures := X.Dims(); nFeatures != c.state.NFeatures {
		return nil, errors.NewDimensionError("transform", c.state.NFeatures, nFeatures, 1)
	}
	return selectColumns(X, c.support_), nil
}

// FitTransform fits and transforms in one call.
func (c *CollinearFilter) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := c.Fit(X); err != nil {
		return nil, err
	}
	return c.Transform(X)
}

// Support returns the indices of the kept features.
func (c *CollinearFilter) Support() []int {
	return c.support_
}

// SelectFromModel keeps the features an already fitted estimator considers
// important. A zero threshold defaults to the mean importance.
type SelectFromModel struct {
	state *model.StateManager

	importer  model.FeatureImporter
	threshold float64
	support_  []int
}

// NewSelectFromModel creates a SelectFromModel selector around a fitted
// FeatureImporter.
func NewSelectFromModel(importer model.FeatureImporter, threshold float64) *SelectFromModel {
	return &SelectFromModel{
		state:     model.NewStateManager(),
		importer:  importer,
		threshold: threshold,
	}
}

// Fit reads the estimator's importances and records the surviving columns.
func (s *SelectFromModel) Fit(X mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "select from model fit")
	}

	importances, err := s.importer.FeatureImportances()
	if err != nil {
		return errors.Wrap(err, "select from model")
	}
	if len(importances) != nFeatures {
		return errors.NewDimensionError("select from model fit", nFeatures, len(importances), 1)
	}

	threshold := s.threshold
	if threshold == 0 {
		var sum float64
		for _, v := range importances {
			sum += v
		}
		threshold = sum / float64(nFeatures)
	}

	s.support_ = s.support_[:0]
	for j, v := range importances {
		if v >= threshold {
			s.support_ = append(s.support_, j)
		}
	}

	s.state.SetFitted(nSamples, nFeatures)
	return nil
}

// Transform keeps only the surviving columns.
func (s *SelectFromModel) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("SelectFromModel", "Transform")
	}
	if _, nFeatures := X.Dims(); nFeatures != s.state.NFeatures {
		return nil, errors.NewDimensionError("transform", s.state.NFeatures, nFeatures, 1)
	}
	return selectColumns(X, s.support_), nil
}

// FitTransform fits and transforms in one call.
func (s *SelectFromModel) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Support returns the indices of the kept features.
func (s *SelectFromModel) Support() []int {
	return s.support_
}
