package modelselection

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func makeData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)*2)
		y.SetVec(i, float64(i%2))
	}
	return X, y
}

func TestKFoldPartition(t *testing.T) {
	X, y := makeData(10)
	kf := NewKFold(3, false, 42)

	folds := kf.Split(X, y)
	if len(folds) != 3 {
		t.Fatalf("got %d folds, want 3", len(folds))
	}

	seen := make(map[int]int)
	for _, fold := range folds {
		if len(fold.TrainIndices)+len(fold.TestIndices) != 10 {
			t.Errorf("train+test = %d, want 10", len(fold.TrainIndices)+len(fold.TestIndices))
		}
		for _, idx := range fold.TestIndices {
			seen[idx]++
		}
	}
	for i := 0; i < 10; i++ {
		if seen[i] != 1 {
			t.Errorf("sample %d appears in %d validation sets, want exactly 1", i, seen[i])
		}
	}
}

func TestKFoldShuffleDeterminism(t *testing.T) {
	X, y := makeData(20)

	a := NewKFold(4, true, 7).Split(X, y)
	b := NewKFold(4, true, 7).Split(X, y)
	for i := range a {
		for j := range a[i].TestIndices {
			if a[i].TestIndices[j] != b[i].TestIndices[j] {
				t.Fatal("same seed must produce identical folds")
			}
		}
	}

	c := NewKFold(4, true, 8).Split(X, y)
	same := true
	for i := range a {
		for j := range a[i].TestIndices {
			if a[i].TestIndices[j] != c[i].TestIndices[j] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical shuffles")
	}
}

func TestStratifiedKFoldPreservesRatio(t *testing.T) {
	// 12 samples, 8 negatives then 4 positives.
	X := mat.NewDense(12, 1, nil)
	y := mat.NewVecDense(12, nil)
	for i := 8; i < 12; i++ {
		y.SetVec(i, 1)
	}

	folds := NewStratifiedKFold(4, false, 0).Split(X, y)
	for i, fold := range folds {
		positives := 0
		for _, idx := range fold.TestIndices {
			if y.AtVec(idx) == 1 {
				positives++
			}
		}
		if positives != 1 {
			t.Errorf("fold %d has %d positives, want 1", i, positives)
		}
		if len(fold.TestIndices) != 3 {
			t.Errorf("fold %d has %d validation samples, want 3", i, len(fold.TestIndices))
		}
	}
}

func TestShuffleSplitSingleFold(t *testing.T) {
	X, y := makeData(10)

	folds := NewShuffleSplit(0.3, 1).Split(X, y)
	if len(folds) != 1 {
		t.Fatalf("got %d folds, want 1", len(folds))
	}
	if len(folds[0].TestIndices) != 3 {
		t.Errorf("got %d validation samples, want 3", len(folds[0].TestIndices))
	}
	if len(folds[0].TrainIndices) != 7 {
		t.Errorf("got %d train samples, want 7", len(folds[0].TrainIndices))
	}
}

func TestBootstrapSubset(t *testing.T) {
	X, y := makeData(5)
	r := rand.New(rand.NewPCG(3, 3))

	indices := Bootstrap(5, r)
	if len(indices) != 5 {
		t.Fatalf("got %d indices, want 5", len(indices))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= 5 {
			t.Fatalf("index %d out of range", idx)
		}
	}

	Xs := Subset(X, indices)
	ys := SubsetVec(y, indices)
	rows, cols := Xs.Dims()
	if rows != 5 || cols != 2 {
		t.Errorf("subset dims = %dx%d, want 5x2", rows, cols)
	}
	for i, idx := range indices {
		if Xs.At(i, 0) != X.At(idx, 0) || ys.AtVec(i) != y.AtVec(idx) {
			t.Errorf("row %d does not match source row %d", i, idx)
		}
	}
}
