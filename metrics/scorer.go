package metrics

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// Task restricts a scorer to the model kind it applies to.
type Task int

const (
	// TaskAny marks scorers valid for every model kind.
	TaskAny Task = iota
	// TaskClassification marks classification-only scorers.
	TaskClassification
	// TaskRegression marks regression-only scorers.
	TaskRegression
)

// Scorer is a named metric with the metadata the optimization loop needs:
// whether larger raw values are better, whether it consumes probabilities
// instead of labels, and which task it applies to.
type Scorer struct {
	Name            string
	Task            Task
	GreaterIsBetter bool
	NeedsProba      bool

	fn func(yTrue, yPred *mat.VecDense) (float64, error)
}

// Score evaluates the metric and returns a value to be maximized: raw for
// greater-is-better metrics, negated for losses. This keeps trial ranking
// uniform across metrics.
func (s Scorer) Score(yTrue, yPred mat.Matrix) (float64, error) {
	trueVec, err := toVec(s.Name, yTrue)
	if err != nil {
		return 0, err
	}
	predVec, err := toVec(s.Name, yPred)
	if err != nil {
		return 0, err
	}

	value, err := s.fn(trueVec, predVec)
	if err != nil {
		return 0, err
	}
	if !s.GreaterIsBetter {
		return -value, nil
	}
	return value, nil
}

// Raw evaluates the metric without the maximization sign.
func (s Scorer) Raw(yTrue, yPred mat.Matrix) (float64, error) {
	trueVec, err := toVec(s.Name, yTrue)
	if err != nil {
		return 0, err
	}
	predVec, err := toVec(s.Name, yPred)
	if err != nil {
		return 0, err
	}
	return s.fn(trueVec, predVec)
}

var registry = map[string]Scorer{
	"accuracy":  {Name: "accuracy", Task: TaskClassification, GreaterIsBetter: true, fn: Accuracy},
	"precision": {Name: "precision", Task: TaskClassification, GreaterIsBetter: true, fn: Precision},
	"recall":    {Name: "recall", Task: TaskClassification, GreaterIsBetter: true, fn: Recall},
	"f1":        {Name: "f1", Task: TaskClassification, GreaterIsBetter: true, fn: F1},
	"logloss":   {Name: "logloss", Task: TaskClassification, NeedsProba: true, fn: BinaryLogLoss},
	"auc":       {Name: "auc", Task: TaskClassification, GreaterIsBetter: true, NeedsProba: true, fn: AUC},

	"mse":  {Name: "mse", Task: TaskRegression, fn: MSE},
	"rmse": {Name: "rmse", Task: TaskRegression, fn: RMSE},
	"mae":  {Name: "mae", Task: TaskRegression, fn: MAE},
	"r2":   {Name: "r2", Task: TaskRegression, GreaterIsBetter: true, fn: R2Score},

	// Confusion-matrix derivatives, mainly for reporting.
	"tn":   {Name: "tn", Task: TaskClassification, GreaterIsBetter: true, fn: TrueNegatives},
	"fp":   {Name: "fp", Task: TaskClassification, fn: FalsePositives},
	"fn":   {Name: "fn", Task: TaskClassification, fn: FalseNegatives},
	"tp":   {Name: "tp", Task: TaskClassification, GreaterIsBetter: true, fn: TruePositives},
	"lift": {Name: "lift", Task: TaskClassification, GreaterIsBetter: true, fn: Lift},
	"fpr":  {Name: "fpr", Task: TaskClassification, fn: FalsePositiveRate},
	"tpr":  {Name: "tpr", Task: TaskClassification, GreaterIsBetter: true, fn: TruePositiveRate},
	"sup":  {Name: "sup", Task: TaskClassification, GreaterIsBetter: true, fn: Support},
}

// Acronym aliases accepted by Get.
var aliases = map[string]string{
	"acc":      "accuracy",
	"log_loss": "logloss",
	"roc_auc":  "auc",
}

// Get looks up a scorer by name (case-insensitive, acronym aliases
// accepted). Unknown names return a ConfigurationError listing the known
// scorers.
func Get(name string) (Scorer, error) {
	key := strings.ToLower(name)
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	scorer, ok := registry[key]
	if !ok {
		return Scorer{}, errors.NewConfigurationError(
			"", "metric", "unknown scorer '"+name+"'. Try one of: "+strings.Join(Known(), ", "))
	}
	return scorer, nil
}

// Known returns the sorted list of registered scorer names.
func Known() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
