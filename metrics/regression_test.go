package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	yTrue := vec(3, -0.5, 2, 7)
	yPred := vec(2.5, 0, 2, 8)

	got, err := MSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	if math.Abs(got-0.375) > 1e-12 {
		t.Errorf("MSE = %v, want 0.375", got)
	}
}

func TestRMSE(t *testing.T) {
	yTrue := vec(3, -0.5, 2, 7)
	yPred := vec(2.5, 0, 2, 8)

	got, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE failed: %v", err)
	}
	if math.Abs(got-math.Sqrt(0.375)) > 1e-12 {
		t.Errorf("RMSE = %v, want sqrt(0.375)", got)
	}
}

func TestMAE(t *testing.T) {
	yTrue := vec(3, -0.5, 2, 7)
	yPred := vec(2.5, 0, 2, 8)

	got, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE failed: %v", err)
	}
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("MAE = %v, want 0.5", got)
	}
}

func TestR2Score(t *testing.T) {
	yTrue := vec(3, -0.5, 2, 7)
	yPred := vec(2.5, 0, 2, 8)

	got, err := R2Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if math.Abs(got-0.9486081370449679) > 1e-9 {
		t.Errorf("R2Score = %v, want ~0.9486", got)
	}

	perfect, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if perfect != 1 {
		t.Errorf("R2Score = %v, want 1 for identical vectors", perfect)
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	constant := vec(2, 2, 2)

	got, err := R2Score(constant, vec(1, 2, 3))
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if got != 0 {
		t.Errorf("R2Score = %v, want 0 for constant target with errors", got)
	}

	exact, err := R2Score(constant, constant)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if exact != 1 {
		t.Errorf("R2Score = %v, want 1 for exact constant prediction", exact)
	}
}

func TestEmptyInput(t *testing.T) {
	empty := &mat.VecDense{}
	if _, err := MSE(empty, empty); err == nil {
		t.Error("MSE should reject empty vectors")
	}
}
