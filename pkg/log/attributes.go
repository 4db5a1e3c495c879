// Package log defines standard attribute keys for machine learning operations.
//
// Using these keys keeps the structured output of the boosting engine, the
// cross validation harness and the CLI consistent, so that log lines can be
// filtered by operation, phase or round.
//
// The keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples").
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "AdaBoostClassifier", "DecisionStump"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records model accuracy for evaluation operations.
	AccuracyKey = "metrics.accuracy"

	// IterationKey records the current boosting round.
	IterationKey = "training.iteration"

	// FoldKey records the cross validation fold index.
	FoldKey = "cv.fold"
)

// Boosting
const (
	// EstimatorsKey records the configured ensemble size.
	EstimatorsKey = "boost.n_estimators"

	// AlphaKey records the reliability weight of a round.
	AlphaKey = "boost.alpha"

	// ErrorRateKey records the weighted error of a round.
	ErrorRateKey = "boost.error_rate"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit           = "fit"
	OperationPredict       = "predict"
	OperationScore         = "score"
	OperationCrossValidate = "cross_validate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"

	ErrorNotTrained   = "NOT_TRAINED"
	ErrorInvalidInput = "INVALID_INPUT"
	ErrorTraining     = "TRAINING_FAILURE"
)
