package optimize

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

func TestSpaceValidate(t *testing.T) {
	valid := Space{
		NewLogReal("alpha", 1e-4, 10),
		NewInteger("n_neighbors", 1, 50),
		NewCategorical("weights", "uniform", "distance"),
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name  string
		space Space
	}{
		{"inverted bounds", Space{NewReal("alpha", 5, 1)}},
		{"equal bounds", Space{NewInteger("depth", 3, 3)}},
		{"log-uniform with zero bound", Space{NewLogReal("alpha", 0, 1)}},
		{"no choices", Space{NewCategorical("criterion")}},
		{"empty name", Space{NewReal("", 0, 1)}},
		{"duplicate name", Space{NewReal("alpha", 0, 1), NewInteger("alpha", 1, 5)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.space.Validate()
			require.Error(t, err)
			var spaceErr *errors.InvalidSearchSpaceError
			assert.True(t, errors.As(err, &spaceErr))
		})
	}
}

func TestSpaceSampleWithinBounds(t *testing.T) {
	space := Space{
		NewLogReal("alpha", 1e-3, 100),
		NewInteger("n_neighbors", 1, 10),
		NewCategorical("weights", "uniform", "distance"),
	}
	r := rand.New(rand.NewPCG(1, 1))

	for i := 0; i < 200; i++ {
		params := space.Sample(r)

		alpha := params["alpha"].(float64)
		assert.GreaterOrEqual(t, alpha, 1e-3)
		assert.LessOrEqual(t, alpha, 100.0)

		k := params["n_neighbors"].(int)
		assert.GreaterOrEqual(t, k, 1)
		assert.LessOrEqual(t, k, 10)

		w := params["weights"].(string)
		assert.Contains(t, []string{"uniform", "distance"}, w)
	}
}

func TestSpaceEncodeUnitHypercube(t *testing.T) {
	space := Space{
		NewReal("lr", 0, 2),
		NewLogReal("alpha", 0.01, 100),
		NewInteger("depth", 2, 12),
		NewCategorical("criterion", "gini", "entropy"),
	}
	params := map[string]interface{}{
		"lr":        1.0,
		"alpha":     1.0,
		"depth":     7,
		"criterion": "entropy",
	}

	x := space.Encode(params)
	require.Len(t, x, 4)
	assert.InDelta(t, 0.5, x[0], 1e-12)
	assert.InDelta(t, 0.5, x[1], 1e-12)
	assert.InDelta(t, 0.5, x[2], 1e-12)
	assert.Equal(t, 1.0, x[3])

	for _, v := range x {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestLogUniformSkewsLow(t *testing.T) {
	// Over [0.001, 1000] half the log-uniform mass sits below 1.
	space := Space{NewLogReal("alpha", 0.001, 1000)}
	r := rand.New(rand.NewPCG(2, 2))

	below := 0
	const n = 2000
	for i := 0; i < n; i++ {
		if space.Sample(r)["alpha"].(float64) < 1 {
			below++
		}
	}
	assert.InDelta(t, 0.5, float64(below)/n, 0.05)
}
