package models

import (
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// Two well-separated Gaussian blobs around (0,0) and (4,4).
func blobs() (*mat.Dense, *mat.Dense) {
	data := []float64{
		0.1, 0.2, 0.3, 0.1, 0.2, 0.4, 0.0, 0.3, 0.4, 0.0,
		4.1, 4.2, 4.3, 4.1, 4.2, 4.4, 4.0, 4.3, 4.4, 4.0,
	}
	X := mat.NewDense(10, 2, data)
	y := mat.NewDense(10, 1, []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1})
	return X, y
}

func trainAccuracy(t *testing.T, est interface {
	Predict(mat.Matrix) (mat.Matrix, error)
}, X, y mat.Matrix) float64 {
	t.Helper()
	pred, err := est.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	n, _ := y.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

func TestGaussianNBSeparableBlobs(t *testing.T) {
	X, y := blobs()
	nb := NewGaussianNB()

	if err := nb.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if acc := trainAccuracy(t, nb, X, y); acc != 1 {
		t.Errorf("train accuracy = %v, want 1", acc)
	}

	classes := nb.Classes()
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Errorf("Classes = %v, want [0 1]", classes)
	}

	probas, err := nb.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		sum := probas.At(i, 0) + probas.At(i, 1)
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d probabilities sum to %v", i, sum)
		}
	}
}

func TestGaussianNBNotFitted(t *testing.T) {
	nb := NewGaussianNB()
	_, err := nb.Predict(mat.NewDense(1, 2, nil))
	if err == nil {
		t.Fatal("expected an error before fitting")
	}
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %T", err)
	}
}

func TestRidgeRecoversLinearFunction(t *testing.T) {
	// y = 2x + 1 with near-zero regularization.
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i)
		X.Set(i, 0, x)
		y.Set(i, 0, 2*x+1)
	}

	r := NewRidge(WithAlpha(1e-8))
	if err := r.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if math.Abs(r.Coef()[0]-2) > 1e-4 {
		t.Errorf("coef = %v, want 2", r.Coef()[0])
	}
	if math.Abs(r.Intercept()-1) > 1e-3 {
		t.Errorf("intercept = %v, want 1", r.Intercept())
	}

	pred, err := r.Predict(mat.NewDense(1, 1, []float64{100}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(pred.At(0, 0)-201) > 0.1 {
		t.Errorf("prediction = %v, want ~201", pred.At(0, 0))
	}
}

func TestRidgeAlphaShrinksCoefficients(t *testing.T) {
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y.Set(i, 0, 3*float64(i))
	}

	weak := NewRidge(WithAlpha(1e-8))
	strong := NewRidge(WithAlpha(1e6))
	if err := weak.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := strong.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if math.Abs(strong.Coef()[0]) >= math.Abs(weak.Coef()[0]) {
		t.Errorf("strong alpha coef %v should shrink below %v", strong.Coef()[0], weak.Coef()[0])
	}
}

func TestKNNClassifier(t *testing.T) {
	X, y := blobs()
	knn := NewKNNClassifier(WithNNeighbors(3), WithWeights("distance"))

	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if acc := trainAccuracy(t, knn, X, y); acc != 1 {
		t.Errorf("train accuracy = %v, want 1", acc)
	}

	// A point deep inside the class-1 blob.
	pred, err := knn.Predict(mat.NewDense(1, 2, []float64{4.2, 4.2}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.At(0, 0) != 1 {
		t.Errorf("prediction = %v, want 1", pred.At(0, 0))
	}
}

func TestKNNValidation(t *testing.T) {
	X, y := blobs()

	if err := NewKNNClassifier(WithNNeighbors(0)).Fit(X, y); err == nil {
		t.Error("expected an error for n_neighbors=0")
	}
	if err := NewKNNClassifier(WithNNeighbors(99)).Fit(X, y); err == nil {
		t.Error("expected an error for n_neighbors above sample count")
	}
	if err := NewKNNClassifier(WithWeights("quadratic")).Fit(X, y); err == nil {
		t.Error("expected an error for unknown weights")
	}
}

func TestDecisionTreeLearnsXOR(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0, 0, 0, 1, 1, 0, 1, 1,
		0.1, 0.1, 0.1, 0.9, 0.9, 0.1, 0.9, 0.9,
	})
	y := mat.NewDense(8, 1, []float64{0, 1, 1, 0, 0, 1, 1, 0})

	tree := NewDecisionTreeClassifier(WithCriterion("entropy"))
	if err := tree.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if acc := trainAccuracy(t, tree, X, y); acc != 1 {
		t.Errorf("train accuracy = %v, want 1 on XOR", acc)
	}

	importances, err := tree.FeatureImportances()
	if err != nil {
		t.Fatalf("FeatureImportances failed: %v", err)
	}
	var total float64
	for _, v := range importances {
		if v < 0 {
			t.Errorf("negative importance %v", v)
		}
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("importances sum to %v, want 1", total)
	}
}

func TestDecisionTreeMaxDepthLimitsFit(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0, 0, 0, 1, 1, 0, 1, 1,
		0.1, 0.1, 0.1, 0.9, 0.9, 0.1, 0.9, 0.9,
	})
	y := mat.NewDense(8, 1, []float64{0, 1, 1, 0, 0, 1, 1, 0})

	// XOR needs two levels; a stump cannot separate it.
	stump := NewDecisionTreeClassifier(WithMaxDepth(1))
	if err := stump.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if acc := trainAccuracy(t, stump, X, y); acc == 1 {
		t.Error("a depth-1 tree should not fit XOR perfectly")
	}
}

func TestDecisionTreeValidation(t *testing.T) {
	X, y := blobs()
	if err := NewDecisionTreeClassifier(WithCriterion("mse")).Fit(X, y); err == nil {
		t.Error("expected an error for unknown criterion")
	}
	if err := NewDecisionTreeClassifier(WithMinSamplesSplit(1)).Fit(X, y); err == nil {
		t.Error("expected an error for min_samples_split below 2")
	}
}

func TestCloneIsUnfittedWithSameParams(t *testing.T) {
	X, y := blobs()
	knn := NewKNNClassifier(WithNNeighbors(3), WithWeights("distance"))
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	clone := knn.Clone()
	if _, err := clone.Predict(X); err == nil {
		t.Error("a clone must start unfitted")
	}
	params := clone.GetParams()
	if params["n_neighbors"] != 3 || params["weights"] != "distance" {
		t.Errorf("clone params = %v", params)
	}
}

func TestSetParamsUnknownKey(t *testing.T) {
	if err := NewRidge().SetParams(map[string]interface{}{"gamma": 1.0}); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
}

func TestSetParamsRoundTrip(t *testing.T) {
	tree := NewDecisionTreeClassifier()
	err := tree.SetParams(map[string]interface{}{
		"max_depth":         4,
		"min_samples_split": 5,
		"criterion":         "entropy",
	})
	if err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	params := tree.GetParams()
	if params["max_depth"] != 4 || params["min_samples_split"] != 5 || params["criterion"] != "entropy" {
		t.Errorf("params = %v", params)
	}
}

func TestTreeSaveLoadRoundTrip(t *testing.T) {
	X, y := blobs()
	tree := NewDecisionTreeClassifier(WithMaxDepth(3))
	if err := tree.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "tree.gob")
	if err := tree.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := NewDecisionTreeClassifier()
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	original, err := tree.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	loaded, err := restored.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if original.At(i, 0) != loaded.At(i, 0) {
			t.Errorf("row %d: loaded model predicts %v, original %v", i, loaded.At(i, 0), original.At(i, 0))
		}
	}
}
