// Standard attribute keys for optimization runs. Using the same keys
// everywhere keeps per-model logs filterable by acronym, trial and phase.

package log

// Model and run context.
const (
	// AcronymKey identifies the model family, e.g. "GNB", "KNN", "Tree".
	AcronymKey = "model.acronym"

	// OperationKey names the lifecycle operation being performed.
	// Standard values: "bo", "fit", "bagging", "predict", "transform".
	OperationKey = "ml.operation"

	// PhaseKey indicates the optimizer phase: "random_start" or "guided".
	PhaseKey = "bo.phase"
)

// Trial context.
const (
	// TrialKey is the zero-based iteration index within the trial log.
	TrialKey = "trial.index"

	// ScoreKey is the primary metric value of a trial or evaluation.
	ScoreKey = "trial.score"

	// ParamsKey holds the hyperparameter assignment of a trial.
	ParamsKey = "trial.params"
)

// Data shape and timing.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// DurationKey is the wall-clock duration of an operation.
	DurationKey = "duration"
)
