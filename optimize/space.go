// Package optimize implements sequential Bayesian hyperparameter search:
// a declarative search space, a Gaussian Process surrogate, acquisition
// functions and the optimization loop that drives an objective across an
// initial random-exploration phase and a model-guided phase.
package optimize

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// Kind discriminates the dimension types a search space can declare.
type Kind int

const (
	// Real is a continuous dimension with inclusive float bounds.
	Real Kind = iota
	// Integer is a discrete dimension with inclusive integer bounds.
	Integer
	// Categorical is an unordered set of allowed values.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Real:
		return "real"
	case Integer:
		return "integer"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Dimension declares one tunable hyperparameter. Construct with NewReal,
// NewInteger or NewCategorical and treat as immutable afterwards: the
// dimension order inside a Space fixes the encoding used by the surrogate.
type Dimension struct {
	Name       string
	Kind       Kind
	Low        float64
	High       float64
	LogUniform bool
	Choices    []interface{}
}

// NewReal declares a continuous dimension sampled uniformly in [low, high].
func NewReal(name string, low, high float64) Dimension {
	return Dimension{Name: name, Kind: Real, Low: low, High: high}
}

// NewLogReal declares a continuous dimension sampled log-uniformly in
// [low, high]. Both bounds must be positive.
func NewLogReal(name string, low, high float64) Dimension {
	return Dimension{Name: name, Kind: Real, Low: low, High: high, LogUniform: true}
}

// NewInteger declares a discrete dimension sampled uniformly in [low, high].
func NewInteger(name string, low, high int) Dimension {
	return Dimension{Name: name, Kind: Integer, Low: float64(low), High: float64(high)}
}

// NewCategorical declares a dimension sampled uniformly over choices.
func NewCategorical(name string, choices ...interface{}) Dimension {
	return Dimension{Name: name, Kind: Categorical, Choices: choices}
}

func (d Dimension) validate() error {
	if d.Name == "" {
		return errors.NewInvalidSearchSpaceError(d.Name, "dimension name must not be empty")
	}
	switch d.Kind {
	case Real, Integer:
		if d.Low >= d.High {
			return errors.NewInvalidSearchSpaceError(d.Name,
				fmt.Sprintf("lower bound %v must be strictly below upper bound %v", d.Low, d.High))
		}
		if d.LogUniform && d.Low <= 0 {
			return errors.NewInvalidSearchSpaceError(d.Name,
				fmt.Sprintf("log-uniform sampling requires positive bounds, got lower bound %v", d.Low))
		}
	case Categorical:
		if len(d.Choices) == 0 {
			return errors.NewInvalidSearchSpaceError(d.Name, "categorical dimension needs at least one choice")
		}
	default:
		return errors.NewInvalidSearchSpaceError(d.Name, "unknown dimension kind")
	}
	return nil
}

// sample draws one value from the dimension's distribution.
func (d Dimension) sample(r *rand.Rand) interface{} {
	switch d.Kind {
	case Real:
		if d.LogUniform {
			logLow, logHigh := math.Log(d.Low), math.Log(d.High)
			return math.Exp(logLow + r.Float64()*(logHigh-logLow))
		}
		return d.Low + r.Float64()*(d.High-d.Low)
	case Integer:
		low, high := int(d.Low), int(d.High)
		if d.LogUniform {
			logLow, logHigh := math.Log(d.Low), math.Log(d.High)
			v := int(math.Round(math.Exp(logLow + r.Float64()*(logHigh-logLow))))
			if v < low {
				v = low
			}
			if v > high {
				v = high
			}
			return v
		}
		return low + r.IntN(high-low+1)
	default:
		return d.Choices[r.IntN(len(d.Choices))]
	}
}

// encode maps a sampled value into [0, 1] for the surrogate model.
func (d Dimension) encode(v interface{}) float64 {
	switch d.Kind {
	case Real:
		x := v.(float64)
		if d.LogUniform {
			return (math.Log(x) - math.Log(d.Low)) / (math.Log(d.High) - math.Log(d.Low))
		}
		return (x - d.Low) / (d.High - d.Low)
	case Integer:
		x := float64(v.(int))
		if d.LogUniform {
			return (math.Log(x) - math.Log(d.Low)) / (math.Log(d.High) - math.Log(d.Low))
		}
		return (x - d.Low) / (d.High - d.Low)
	default:
		if len(d.Choices) == 1 {
			return 0
		}
		for i, choice := range d.Choices {
			if choice == v {
				return float64(i) / float64(len(d.Choices)-1)
			}
		}
		return 0
	}
}

// Space is the fixed, ordered list of dimensions searched for one model.
// An empty space means the model has no tunable parameters.
type Space []Dimension

// Validate checks every dimension and rejects duplicate names. It must
// pass before any trial runs.
func (s Space) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, d := range s {
		if err := d.validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return errors.NewInvalidSearchSpaceError(d.Name, "duplicate dimension name")
		}
		seen[d.Name] = true
	}
	return nil
}

// Empty reports whether the space declares no dimensions.
func (s Space) Empty() bool {
	return len(s) == 0
}

// Sample draws one parameter assignment, one value per dimension.
func (s Space) Sample(r *rand.Rand) map[string]interface{} {
	params := make(map[string]interface{}, len(s))
	for _, d := range s {
		params[d.Name] = d.sample(r)
	}
	return params
}

// Encode maps a parameter assignment to the unit hypercube in dimension
// order, the representation the surrogate model works in.
func (s Space) Encode(params map[string]interface{}) []float64 {
	x := make([]float64, len(s))
	for i, d := range s {
		x[i] = d.encode(params[d.Name])
	}
	return x
}
