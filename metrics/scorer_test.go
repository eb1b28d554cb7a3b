package metrics

import (
	"testing"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

func TestGetScorer(t *testing.T) {
	scorer, err := Get("f1")
	if err != nil {
		t.Fatalf("Get(f1) failed: %v", err)
	}
	if scorer.Task != TaskClassification || !scorer.GreaterIsBetter {
		t.Errorf("unexpected scorer metadata: %+v", scorer)
	}

	// Acronym alias and case-insensitivity.
	if _, err := Get("ROC_AUC"); err != nil {
		t.Errorf("alias lookup failed: %v", err)
	}

	// "ap" conventionally means average precision, which is not
	// implemented, so it must not resolve to anything else.
	if _, err := Get("ap"); err == nil {
		t.Error("'ap' should not resolve to a scorer")
	}
}

func TestGetScorerUnknown(t *testing.T) {
	_, err := Get("fancy_metric")
	if err == nil {
		t.Fatal("expected an error for unknown scorer")
	}
	var confErr *errors.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("expected ConfigurationError, got %T", err)
	}
}

func TestLossScorerSignFlip(t *testing.T) {
	scorer, err := Get("mse")
	if err != nil {
		t.Fatalf("Get(mse) failed: %v", err)
	}

	yTrue := vec(1, 2, 3)
	yPred := vec(1, 2, 5)

	signed, err := scorer.Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	raw, err := scorer.Raw(yTrue, yPred)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if signed != -raw {
		t.Errorf("signed = %v, raw = %v; losses should be negated for maximization", signed, raw)
	}
	if raw <= 0 {
		t.Errorf("raw MSE should be positive, got %v", raw)
	}
}
