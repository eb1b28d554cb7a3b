package automl

import (
	"sort"
	"strings"
	"sync"

	"github.com/jaswinder9051998/ATOM/core/model"
	"github.com/jaswinder9051998/ATOM/metrics"
	"github.com/jaswinder9051998/ATOM/models"
	"github.com/jaswinder9051998/ATOM/optimize"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// ModelSpec describes one trainable model family: how to build a default
// estimator, what its search space looks like and what preprocessing it
// needs. Registered once, then looked up by acronym.
type ModelSpec struct {
	// Acronym is the lookup key, e.g. "GNB" or "Tree".
	Acronym string
	// FullName is the human-readable model name used in reports.
	FullName string
	// Task declares classification or regression, checked against the
	// requested metrics at configuration time.
	Task metrics.Task
	// NeedsScaling marks distance or penalty based models whose features
	// must be standardized before fitting.
	NeedsScaling bool
	// Factory builds a fresh estimator with default hyperparameters.
	Factory func() model.Estimator
	// Space declares the tunable dimensions. Empty means fit once with
	// defaults instead of searching.
	Space optimize.Space
}

// Registry maps model acronyms to their specs. Lookups are
// case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]ModelSpec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]ModelSpec)}
}

// Register adds or replaces a spec. The search space must validate.
func (r *Registry) Register(spec ModelSpec) error {
	if spec.Acronym == "" {
		return errors.NewValidationError("acronym", "must not be empty", spec.Acronym)
	}
	if spec.Factory == nil {
		return errors.NewValidationError("factory", "must not be nil", nil)
	}
	if err := spec.Space.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[strings.ToUpper(spec.Acronym)] = spec
	return nil
}

// Lookup resolves an acronym. Unknown acronyms return an
// UnknownModelError listing what is registered.
func (r *Registry) Lookup(acronym string) (ModelSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[strings.ToUpper(acronym)]
	if !ok {
		return ModelSpec{}, errors.NewUnknownModelError(acronym, r.knownLocked())
	}
	return spec, nil
}

// Known returns the sorted registered acronyms.
func (r *Registry) Known() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.knownLocked()
}

func (r *Registry) knownLocked() []string {
	known := make([]string, 0, len(r.specs))
	for _, spec := range r.specs {
		known = append(known, spec.Acronym)
	}
	sort.Strings(known)
	return known
}

// DefaultRegistry returns a registry with the built-in model zoo.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// GNB has nothing worth tuning: its empty space makes a run fit the
	// default estimator exactly once.
	mustRegister(r, ModelSpec{
		Acronym:  "GNB",
		FullName: "Gaussian Naive Bayes",
		Task:     metrics.TaskClassification,
		Factory:  func() model.Estimator { return models.NewGaussianNB() },
	})

	mustRegister(r, ModelSpec{
		Acronym:      "Ridge",
		FullName:     "Ridge Regression",
		Task:         metrics.TaskRegression,
		NeedsScaling: true,
		Factory:      func() model.Estimator { return models.NewRidge() },
		Space: optimize.Space{
			optimize.NewLogReal("alpha", 1e-3, 10),
		},
	})

	mustRegister(r, ModelSpec{
		Acronym:      "KNN",
		FullName:     "K-Nearest Neighbors",
		Task:         metrics.TaskClassification,
		NeedsScaling: true,
		Factory:      func() model.Estimator { return models.NewKNNClassifier() },
		Space: optimize.Space{
			optimize.NewInteger("n_neighbors", 1, 15),
			optimize.NewCategorical("weights", "uniform", "distance"),
		},
	})

	mustRegister(r, ModelSpec{
		Acronym:  "Tree",
		FullName: "Decision Tree",
		Task:     metrics.TaskClassification,
		Factory:  func() model.Estimator { return models.NewDecisionTreeClassifier() },
		Space: optimize.Space{
			optimize.NewInteger("max_depth", 1, 12),
			optimize.NewInteger("min_samples_split", 2, 20),
			optimize.NewCategorical("criterion", "gini", "entropy"),
		},
	})

	return r
}

func mustRegister(r *Registry, spec ModelSpec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}
