package optimize

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// quadratic peaks at alpha=0.5 with score 1.
func quadratic(_ context.Context, params map[string]interface{}) (Evaluation, error) {
	alpha := params["alpha"].(float64)
	return Evaluation{Scores: []float64{1 - (alpha-0.5)*(alpha-0.5)}}, nil
}

func testSpace() Space {
	return Space{NewReal("alpha", 0, 1)}
}

func testConfig() Config {
	return Config{
		Name:          "Test",
		NCalls:        15,
		NRandomStarts: 5,
		NCandidates:   100,
		Seed:          42,
	}
}

func TestRunReproducible(t *testing.T) {
	run := func() *Result {
		opt, err := New(testSpace(), testConfig(), nil)
		require.NoError(t, err)
		result, err := opt.Run(context.Background(), quadratic)
		require.NoError(t, err)
		return result
	}

	a, b := run(), run()
	require.Equal(t, len(a.Trials), len(b.Trials))
	for i := range a.Trials {
		assert.Equal(t, a.Trials[i].Params["alpha"], b.Trials[i].Params["alpha"])
		assert.Equal(t, a.Trials[i].Scores, b.Trials[i].Scores)
	}
	assert.Equal(t, a.BestIndex, b.BestIndex)
}

func TestRunFindsGoodPoint(t *testing.T) {
	opt, err := New(testSpace(), testConfig(), nil)
	require.NoError(t, err)

	result, err := opt.Run(context.Background(), quadratic)
	require.NoError(t, err)

	assert.Len(t, result.Trials, 15)
	assert.Equal(t, StopCompleted, result.Stopped)
	assert.Greater(t, result.Best().Primary(), 0.9)
	for _, trial := range result.Trials {
		assert.LessOrEqual(t, trial.Primary(), result.Best().Primary())
	}
}

func TestEmptySpaceRunsOnce(t *testing.T) {
	cfg := testConfig()
	cfg.NCalls = 25
	opt, err := New(Space{}, cfg, nil)
	require.NoError(t, err)

	calls := 0
	result, err := opt.Run(context.Background(), func(_ context.Context, params map[string]interface{}) (Evaluation, error) {
		calls++
		assert.Empty(t, params)
		return Evaluation{Scores: []float64{0.8}}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Len(t, result.Trials, 1)
	assert.Equal(t, 0, result.BestIndex)
}

func TestFailedTrialRecordedWithSentinel(t *testing.T) {
	opt, err := New(testSpace(), testConfig(), nil)
	require.NoError(t, err)

	result, err := opt.Run(context.Background(), func(ctx context.Context, params map[string]interface{}) (Evaluation, error) {
		if params["alpha"].(float64) < 0.5 {
			return Evaluation{}, errors.New("fit blew up")
		}
		return quadratic(ctx, params)
	})
	require.NoError(t, err)

	assert.Len(t, result.Trials, 15)
	failures := 0
	for _, trial := range result.Trials {
		if trial.Failed() {
			failures++
			assert.True(t, math.IsInf(trial.Primary(), -1))
			var fitErr *errors.TrialFitError
			require.True(t, errors.As(trial.Err, &fitErr))
			assert.Equal(t, "Test", fitErr.Acronym)
			assert.Equal(t, trial.Index, fitErr.Iteration)
		}
	}
	assert.Greater(t, failures, 0)
	assert.False(t, result.Best().Failed())
}

func TestAllTrialsFailed(t *testing.T) {
	opt, err := New(testSpace(), testConfig(), nil)
	require.NoError(t, err)

	_, err = opt.Run(context.Background(), func(context.Context, map[string]interface{}) (Evaluation, error) {
		return Evaluation{}, errors.New("always fails")
	})
	require.Error(t, err)

	var noValid *errors.NoValidTrialError
	require.True(t, errors.As(err, &noValid))
	assert.Equal(t, "Test", noValid.Acronym)
	assert.Equal(t, 15, noValid.Trials)
}

func TestMaxTimeStopsEarly(t *testing.T) {
	cfg := testConfig()
	cfg.NCalls = 100
	cfg.MaxTime = 30 * time.Millisecond
	opt, err := New(testSpace(), cfg, nil)
	require.NoError(t, err)

	result, err := opt.Run(context.Background(), func(ctx context.Context, params map[string]interface{}) (Evaluation, error) {
		time.Sleep(10 * time.Millisecond)
		return quadratic(ctx, params)
	})
	require.NoError(t, err)

	assert.Equal(t, StopMaxTime, result.Stopped)
	assert.Less(t, len(result.Trials), 100)
	assert.GreaterOrEqual(t, len(result.Trials), 1)
}

func TestPatienceStopsOnPlateau(t *testing.T) {
	cfg := testConfig()
	cfg.NCalls = 50
	cfg.Patience = 4
	opt, err := New(testSpace(), cfg, nil)
	require.NoError(t, err)

	// Constant objective: only the first trial improves on -Inf.
	result, err := opt.Run(context.Background(), func(context.Context, map[string]interface{}) (Evaluation, error) {
		return Evaluation{Scores: []float64{0.5}}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, StopPlateau, result.Stopped)
	assert.Equal(t, 5, len(result.Trials))
}

func TestContextCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.NCalls = 100
	opt, err := New(testSpace(), cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	result, err := opt.Run(ctx, func(c context.Context, params map[string]interface{}) (Evaluation, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return quadratic(c, params)
	})
	require.NoError(t, err)

	assert.Equal(t, StopCancelled, result.Stopped)
	assert.Equal(t, 3, len(result.Trials))
}

func TestBestTrialTieBreaksEarliest(t *testing.T) {
	trials := []Trial{
		{Index: 0, Scores: []float64{0.7}},
		{Index: 1, Scores: []float64{0.9}},
		{Index: 2, Scores: []float64{0.9}},
		{Index: 3, Scores: []float64{0.4}},
	}
	best, err := BestTrial("Test", trials)
	require.NoError(t, err)
	assert.Equal(t, 1, best)
}

func TestMultiMetricPrimaryDrivesRanking(t *testing.T) {
	trials := []Trial{
		{Index: 0, Scores: []float64{0.6, 0.99}},
		{Index: 1, Scores: []float64{0.8, 0.10}},
	}
	best, err := BestTrial("Test", trials)
	require.NoError(t, err)
	assert.Equal(t, 1, best)
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero calls", func(c *Config) { c.NCalls = 0 }},
		{"zero random starts", func(c *Config) { c.NRandomStarts = 0 }},
		{"random starts above calls", func(c *Config) { c.NRandomStarts = 99 }},
		{"negative patience", func(c *Config) { c.Patience = -1 }},
		{"negative max time", func(c *Config) { c.MaxTime = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := New(testSpace(), cfg, nil)
			require.Error(t, err)
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr))
		})
	}
}
