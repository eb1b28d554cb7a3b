package optimize

import (
	"math"
	"math/rand/v2"
)

// AcquisitionParams carries the state an acquisition function needs to
// rank candidate points during the guided phase.
type AcquisitionParams struct {
	// Best is the highest primary score observed so far.
	Best float64
	// Beta weights the uncertainty term in UCB. Larger means more
	// exploration.
	Beta float64
	// Xi is the minimum improvement margin for EI and PI.
	Xi float64
	// Rand feeds ThompsonSampling.
	Rand *rand.Rand
}

// AcquisitionFunc ranks a candidate from its posterior mean and variance.
// Higher values mark more promising candidates; scores are maximized.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// UCB is the upper confidence bound: predicted score plus a
// Beta-weighted uncertainty bonus.
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean + params.Beta*math.Sqrt(variance)
}

// ExpectedImprovement weighs both the probability and the magnitude of
// improving on the best score so far. The usual default.
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	improvement := mean - params.Best - params.Xi
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		return math.Max(improvement, 0)
	}
	z := improvement / sigma
	return improvement*normalCDF(z) + sigma*normalPDF(z)
}

// ProbabilityOfImprovement is the chance a candidate beats the best score
// so far by at least Xi, ignoring by how much.
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		if mean > params.Best+params.Xi {
			return 1
		}
		return 0
	}
	return normalCDF((mean - params.Best - params.Xi) / sigma)
}

// ThompsonSampling draws one sample from the posterior at the candidate.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	return mean + math.Sqrt(variance)*params.Rand.NormFloat64()
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func normalPDF(z float64) float64 {
	return math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
}
