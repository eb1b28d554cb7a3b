// Package errors provides the error and warning system used across ATOM.
// Errors carry enough context (model acronym, iteration index, attempted
// parameters) to reproduce a failure, and marshal themselves as structured
// zerolog objects.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("ATOM-Warning: %v\n", w)
	}
	// zerolog sink, injected lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the warning handler for the whole library.
// Recoverable conditions (a failed bagging resample, an ill-defined metric)
// are reported through it instead of being returned as errors.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // ignore warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning through the zerolog sink when one is installed,
// falling back to the plain handler otherwise.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Search and configuration errors (fail fast, before any trial runs)
//
// ===========================================================================

// InvalidSearchSpaceError reports a malformed search dimension, e.g. a lower
// bound that is not below the upper bound, or an empty category list.
type InvalidSearchSpaceError struct {
	Dimension string
	Reason    string
}

func (e *InvalidSearchSpaceError) Error() string {
	return fmt.Sprintf("atom: invalid search space: dimension '%s': %s", e.Dimension, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InvalidSearchSpaceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("dimension", e.Dimension).
		Str("reason", e.Reason).
		Str("type", "InvalidSearchSpaceError")
}

// NewInvalidSearchSpaceError creates an InvalidSearchSpaceError with a stack trace.
func NewInvalidSearchSpaceError(dimension, reason string) error {
	err := &InvalidSearchSpaceError{Dimension: dimension, Reason: reason}
	return errors.WithStack(err)
}

// ConfigurationError reports an unsupported setup, such as a classification
// metric requested for a regression model. Fatal for the model being
// configured, never for its siblings in the same run.
type ConfigurationError struct {
	Acronym string
	Param   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Acronym != "" {
		return fmt.Sprintf("atom: %s: invalid configuration for '%s': %s", e.Acronym, e.Param, e.Reason)
	}
	return fmt.Sprintf("atom: invalid configuration for '%s': %s", e.Param, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("acronym", e.Acronym).
		Str("param", e.Param).
		Str("reason", e.Reason).
		Str("type", "ConfigurationError")
}

// NewConfigurationError creates a ConfigurationError with a stack trace.
func NewConfigurationError(acronym, param, reason string) error {
	err := &ConfigurationError{Acronym: acronym, Param: param, Reason: reason}
	return errors.WithStack(err)
}

// UnknownModelError reports a results-table or registry lookup for an
// acronym that was never registered or never run.
type UnknownModelError struct {
	Acronym string
	Known   []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("atom: unknown model acronym '%s' (known: %v)", e.Acronym, e.Known)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UnknownModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("acronym", e.Acronym).
		Strs("known", e.Known).
		Str("type", "UnknownModelError")
}

// NewUnknownModelError creates an UnknownModelError with a stack trace.
func NewUnknownModelError(acronym string, known []string) error {
	err := &UnknownModelError{Acronym: acronym, Known: known}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Runtime trial errors (absorbed locally by the optimization loop)
//
// ===========================================================================

// TrialFitError reports a hyperparameter combination that could not be fit.
// The optimizer records the trial with a sentinel score and continues; this
// type exists so the failure can be logged with full context.
type TrialFitError struct {
	Acronym   string
	Iteration int
	Params    map[string]interface{}
	Err       error
}

func (e *TrialFitError) Error() string {
	return fmt.Sprintf("atom: %s: trial %d failed to fit with params %v: %v",
		e.Acronym, e.Iteration, e.Params, e.Err)
}

func (e *TrialFitError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *TrialFitError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("acronym", e.Acronym).
		Int("iteration", e.Iteration).
		Interface("params", e.Params).
		AnErr("cause", e.Err).
		Str("type", "TrialFitError")
}

// NewTrialFitError creates a TrialFitError with a stack trace.
func NewTrialFitError(acronym string, iteration int, params map[string]interface{}, err error) error {
	trialErr := &TrialFitError{Acronym: acronym, Iteration: iteration, Params: params, Err: err}
	return errors.WithStack(trialErr)
}

// NoValidTrialError reports that every trial in a model's optimization run
// failed. Fatal for that model only; the multi-model run continues.
type NoValidTrialError struct {
	Acronym string
	Trials  int
}

func (e *NoValidTrialError) Error() string {
	return fmt.Sprintf("atom: %s: all %d trials failed to fit; no valid hyperparameters found",
		e.Acronym, e.Trials)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NoValidTrialError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("acronym", e.Acronym).
		Int("trials", e.Trials).
		Str("type", "NoValidTrialError")
}

// NewNoValidTrialError creates a NoValidTrialError with a stack trace.
func NewNoValidTrialError(acronym string, trials int) error {
	err := &NoValidTrialError{Acronym: acronym, Trials: trials}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// BaggingFitWarning reports a bootstrap resample that failed to fit. The
// sample is skipped, lowering the effective bagging sample count.
type BaggingFitWarning struct {
	Acronym string
	Sample  int
	Err     error
}

func (w *BaggingFitWarning) Error() string {
	return fmt.Sprintf("%s: bagging sample %d failed to fit and was skipped: %v",
		w.Acronym, w.Sample, w.Err)
}

func (w *BaggingFitWarning) Unwrap() error {
	return w.Err
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *BaggingFitWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("acronym", w.Acronym).
		Int("sample", w.Sample).
		AnErr("cause", w.Err).
		Str("type", "BaggingFitWarning")
}

// NewBaggingFitWarning creates a new BaggingFitWarning.
func NewBaggingFitWarning(acronym string, sample int, err error) *BaggingFitWarning {
	return &BaggingFitWarning{Acronym: acronym, Sample: sample, Err: err}
}

// UndefinedMetricWarning is emitted when a metric is ill-defined for the
// given predictions, e.g. precision with no positive predictions.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // value returned under this condition
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	General model errors
//
// ===========================================================================

// NotFittedError is returned when Predict or Transform is called on an
// estimator that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("atom: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports input data whose shape differs from what was seen
// during fitting.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("atom: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable for the operation,
// e.g. an empty vector passed to a metric.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("atom: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ValidationError reports a parameter value that failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("atom: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when a dataset with no rows is supplied.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a linear solve hits a singular matrix.
	ErrSingularMatrix = New("singular matrix")
)
