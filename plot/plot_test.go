package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jaswinder9051998/ATOM/automl"
	"github.com/jaswinder9051998/ATOM/optimize"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

func TestBOProgressWritesFile(t *testing.T) {
	trials := []optimize.Trial{
		{Index: 0, Scores: []float64{0.5}},
		{Index: 1, Err: errors.New("failed trial")},
		{Index: 2, Scores: []float64{0.7}},
		{Index: 3, Scores: []float64{0.6}},
	}

	path := filepath.Join(t.TempDir(), "bo.png")
	if err := BOProgress(trials, "Tree", path); err != nil {
		t.Fatalf("BOProgress failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestBOProgressNoTrials(t *testing.T) {
	if err := BOProgress(nil, "x", "unused.png"); err == nil {
		t.Error("expected an error for an empty trial log")
	}
	allFailed := []optimize.Trial{{Index: 0, Err: errors.New("boom")}}
	if err := BOProgress(allFailed, "x", "unused.png"); err == nil {
		t.Error("expected an error when every trial failed")
	}
}

func TestResultsWritesFile(t *testing.T) {
	table := automl.NewResultsTable()
	rows := []automl.ModelResult{
		{Acronym: "GNB", MetricTest: []float64{0.8}},
		{Acronym: "Tree", MetricTest: []float64{0.9}},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "results.png")
	if err := Results(table, "run", path); err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("plot file missing: %v", err)
	}
}

func TestResultsEmptyTable(t *testing.T) {
	if err := Results(automl.NewResultsTable(), "run", "unused.png"); err == nil {
		t.Error("expected an error for an empty table")
	}
}
