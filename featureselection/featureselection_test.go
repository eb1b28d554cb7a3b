package featureselection

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/models"
)

func TestVarianceThresholdDropsConstant(t *testing.T) {
	// Column 1 is constant, column 0 and 2 vary.
	X := mat.NewDense(4, 3, []float64{
		1, 5, 10,
		2, 5, 20,
		3, 5, 30,
		4, 5, 40,
	})

	vt := NewVarianceThreshold(0)
	out, err := vt.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	_, cols := out.Dims()
	if cols != 2 {
		t.Fatalf("kept %d columns, want 2", cols)
	}
	support := vt.Support()
	if len(support) != 2 || support[0] != 0 || support[1] != 2 {
		t.Errorf("Support = %v, want [0 2]", support)
	}
	if out.At(0, 1) != 10 {
		t.Errorf("column order changed: got %v at (0,1), want 10", out.At(0, 1))
	}
}

func TestCollinearFilterDropsLaterDuplicate(t *testing.T) {
	// Column 1 = 2 * column 0; column 2 is independent.
	X := mat.NewDense(5, 3, []float64{
		1, 2, 3,
		2, 4, 1,
		3, 6, 4,
		4, 8, 1,
		5, 10, 5,
	})

	cf := NewCollinearFilter(0.95)
	out, err := cf.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	_, cols := out.Dims()
	if cols != 2 {
		t.Fatalf("kept %d columns, want 2", cols)
	}
	support := cf.Support()
	if support[0] != 0 || support[1] != 2 {
		t.Errorf("Support = %v, want [0 2]", support)
	}
}

func TestCollinearFilterValidation(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := NewCollinearFilter(1.5).Fit(X); err == nil {
		t.Error("expected an error for max_correlation above 1")
	}
	if err := NewCollinearFilter(0).Fit(X); err == nil {
		t.Error("expected an error for zero max_correlation")
	}
}

func TestSelectFromModelKeepsInformativeFeatures(t *testing.T) {
	// Only column 0 separates the classes; columns 1 and 2 are noise that
	// is identical across classes.
	X := mat.NewDense(8, 3, []float64{
		0, 1, 2,
		0.1, 2, 1,
		0.2, 1, 2,
		0.3, 2, 1,
		5.0, 1, 2,
		5.1, 2, 1,
		5.2, 1, 2,
		5.3, 2, 1,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	tree := models.NewDecisionTreeClassifier()
	if err := tree.Fit(X, y); err != nil {
		t.Fatalf("tree Fit failed: %v", err)
	}

	sfm := NewSelectFromModel(tree, 0)
	out, err := sfm.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	support := sfm.Support()
	if len(support) != 1 || support[0] != 0 {
		t.Fatalf("Support = %v, want [0]", support)
	}
	_, cols := out.Dims()
	if cols != 1 {
		t.Errorf("kept %d columns, want 1", cols)
	}
}

func TestSelectFromModelUnfittedEstimator(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	sfm := NewSelectFromModel(models.NewDecisionTreeClassifier(), 0)
	if err := sfm.Fit(X); err == nil {
		t.Error("expected an error when the estimator is not fitted")
	}
}

func TestTransformBeforeFit(t *testing.T) {
	if _, err := NewVarianceThreshold(0).Transform(mat.NewDense(1, 1, nil)); err == nil {
		t.Error("Transform should fail before Fit")
	}
}
