// Package ensemble implements discrete AdaBoost over weak binary classifiers.
//
// Labels are -1 and +1. Each round fits a fresh weak learner to the current
// sample distribution, weights it by its reliability
// alpha = 0.5*ln((1-eps)/eps) and reweights the samples so that the next
// learner focuses on the rows the ensemble still gets wrong. Prediction is
// the sign of the alpha-weighted vote.
//
// Example:
//
//	clf := ensemble.NewAdaBoostClassifier(ensemble.WithNEstimators(50))
//	if err := clf.Train(X, y); err != nil {
//	    return err
//	}
//	labels, err := clf.Predict(Xtest)
package ensemble

import (
	"sync"
	"time"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/core/parallel"
	"github.com/YuminosukeSato/adaboost/metrics"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/YuminosukeSato/adaboost/pkg/log"
	"github.com/YuminosukeSato/adaboost/tree"
	"gonum.org/v1/gonum/mat"
)

const modelName = "AdaBoostClassifier"

// DefaultNEstimators is the ensemble size used when WithNEstimators is not given.
const DefaultNEstimators = 50

// DefaultParallelThreshold is the row count above which prediction is split
// across goroutines.
const DefaultParallelThreshold = 1000

// AdaBoostClassifier is a boosted ensemble of weak binary classifiers.
//
// Train discards any previous state before building a new ensemble, so one
// value can be retrained any number of times. Predict and the other read
// methods may be called concurrently; Train takes an exclusive lock.
type AdaBoostClassifier struct {
	mu    sync.RWMutex
	state *model.StateManager

	// Hyperparameters
	nEstimators       int
	newLearner        model.WeakLearnerFactory
	callbacks         []RoundCallback
	logger            log.Logger
	parallelThreshold int

	// Learned state, one entry per completed round
	estimators    []model.WeakLearner
	alphas        []float64
	errorRates    []float64
	sampleWeights []float64
}

var (
	_ model.Classifier = (*AdaBoostClassifier)(nil)
	_ model.Fitter     = (*AdaBoostClassifier)(nil)
)

// Option is a functional option for AdaBoostClassifier.
type Option func(*AdaBoostClassifier)

// WithNEstimators sets the number of boosting rounds.
func WithNEstimators(n int) Option {
	return func(a *AdaBoostClassifier) {
		a.nEstimators = n
	}
}

// WithWeakLearner sets the factory called once per round. A nil factory
// keeps the decision stump default.
func WithWeakLearner(factory model.WeakLearnerFactory) Option {
	return func(a *AdaBoostClassifier) {
		if factory != nil {
			a.newLearner = factory
		}
	}
}

// WithRoundCallback registers a callback run after every round.
func WithRoundCallback(cb RoundCallback) Option {
	return func(a *AdaBoostClassifier) {
		a.callbacks = append(a.callbacks, cb)
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger log.Logger) Option {
	return func(a *AdaBoostClassifier) {
		a.logger = logger.With(log.ModelNameKey, modelName)
	}
}

// WithParallelThreshold sets the row count above which Predict runs in
// parallel.
func WithParallelThreshold(rows int) Option {
	return func(a *AdaBoostClassifier) {
		a.parallelThreshold = rows
	}
}

// NewAdaBoostClassifier creates an untrained ensemble.
func NewAdaBoostClassifier(opts ...Option) *AdaBoostClassifier {
	a := &AdaBoostClassifier{
		state:             model.NewStateManager(),
		nEstimators:       DefaultNEstimators,
		newLearner:        tree.NewStumpFactory(),
		logger:            log.GetLoggerWithName("ensemble").With(log.ModelNameKey, modelName),
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Train builds a new ensemble of exactly NEstimators members on X (n × p)
// and y (length n, values -1 or +1).
//
// Any previous ensemble is discarded first. If training fails the ensemble
// is left untrained.
func (a *AdaBoostClassifier) Train(X mat.Matrix, y []float64) error {
	const op = modelName + ".Train"

	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()

	nSamples, nFeatures := X.Dims()
	if err := validateTrainingData(op, nSamples, nFeatures, y); err != nil {
		a.logger.Error("Invalid training data", err, log.ErrorCodeKey, log.ErrorInvalidInput)
		return err
	}
	if a.nEstimators < 0 {
		err := errors.NewInvalidInputErrorf(op, "n_estimators must be non-negative, got %d", a.nEstimators)
		a.logger.Error("Invalid ensemble size", err, log.ErrorCodeKey, log.ErrorInvalidInput)
		return err
	}

	logger := a.logger.With(log.OperationKey, log.OperationFit, log.PhaseKey, log.PhaseTraining)
	logger.Info("Training started",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.EstimatorsKey, a.nEstimators,
	)
	start := time.Now()

	weights := make([]float64, nSamples)
	for i := range weights {
		weights[i] = 1 / float64(nSamples)
	}

	estimators := make([]model.WeakLearner, 0, a.nEstimators)
	alphas := make([]float64, 0, a.nEstimators)
	errorRates := make([]float64, 0, a.nEstimators)

	for round := 1; round <= a.nEstimators; round++ {
		learner, pred, err := a.fitRound(X, y, weights)
		if err != nil {
			err = errors.NewTrainingError(op, round, "weak learner failed", err)
			logger.Error("Training failed", err, log.IterationKey, round, log.ErrorCodeKey, log.ErrorTraining)
			return err
		}

		eps, err := WeightedError(weights, pred, y)
		if err != nil {
			err = errors.NewTrainingError(op, round, "cannot compute error rate", err)
			logger.Error("Training failed", err, log.IterationKey, round, log.ErrorCodeKey, log.ErrorTraining)
			return err
		}
		alpha := Reliability(eps)
		if eps >= 0.5 {
			errors.Warn(errors.NewWeakLearnerWarning(round, eps, alpha))
		}

		next, err := UpdateWeights(weights, pred, y, alpha)
		if err != nil {
			err = errors.NewTrainingError(op, round, "cannot renormalise sample weights", err)
			logger.Error("Training failed", err, log.IterationKey, round, log.ErrorCodeKey, log.ErrorTraining)
			return err
		}
		weights = next

		estimators = append(estimators, learner)
		alphas = append(alphas, alpha)
		errorRates = append(errorRates, eps)

		logger.Debug("Boosting round",
			log.IterationKey, round,
			log.ErrorRateKey, eps,
			log.AlphaKey, alpha,
		)

		if len(a.callbacks) > 0 {
			info := RoundInfo{Round: round, ErrorRate: eps, Alpha: alpha, Weights: append([]float64(nil), weights...)}
			for _, cb := range a.callbacks {
				if err := cb(info); err != nil {
					return errors.NewTrainingError(op, round, "round callback aborted training", err)
				}
			}
		}
	}

	a.estimators = estimators
	a.alphas = alphas
	a.errorRates = errorRates
	a.sampleWeights = weights
	a.state.SetFitted(nFeatures, nSamples)

	logger.Info("Training finished",
		log.EstimatorsKey, len(estimators),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// fitRound fits one fresh learner and returns its predictions on X.
// Panics inside the learner are returned as errors.
func (a *AdaBoostClassifier) fitRound(X mat.Matrix, y, weights []float64) (model.WeakLearner, []float64, error) {
	learner := a.newLearner()
	if learner == nil {
		return nil, nil, errors.New("weak learner factory returned nil")
	}

	var pred []float64
	err := errors.SafeExecute("weak learner", func() error {
		if err := learner.Fit(X, y, weights); err != nil {
			return err
		}
		var err error
		pred, err = learner.Predict(X)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if err := checkPredictions(pred, len(y)); err != nil {
		return nil, nil, err
	}
	return learner, pred, nil
}

func validateTrainingData(op string, nSamples, nFeatures int, y []float64) error {
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewInvalidInputError(op, "X has no rows or no columns")
	}
	if len(y) != nSamples {
		return errors.NewInvalidInputErrorf(op, "X has %d rows but y has %d labels", nSamples, len(y))
	}
	for i, label := range y {
		if label != 1 && label != -1 {
			return errors.NewInvalidInputErrorf(op, "label %v at row %d is not -1 or +1", label, i)
		}
	}
	return nil
}

func checkPredictions(pred []float64, n int) error {
	if len(pred) != n {
		return errors.Wrapf(errors.ErrPredictionCount, "got %d predictions for %d rows", len(pred), n)
	}
	for i, p := range pred {
		if p != 1 && p != -1 {
			return errors.Wrapf(errors.ErrPredictionDomain, "row %d predicted %v", i, p)
		}
	}
	return nil
}

func (a *AdaBoostClassifier) reset() {
	a.estimators = nil
	a.alphas = nil
	a.errorRates = nil
	a.sampleWeights = nil
	a.state.Reset()
}

// Predict returns the sign of the weighted vote for every row of X.
// A vote of exactly 0 yields TieLabel.
func (a *AdaBoostClassifier) Predict(X mat.Matrix) ([]float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	scores, err := a.decisionFunction(X, "Predict")
	if err != nil {
		return nil, err
	}
	for i, s := range scores {
		scores[i] = sign(s)
	}
	return scores, nil
}

// DecisionFunction returns the weighted vote sum of every row of X.
func (a *AdaBoostClassifier) DecisionFunction(X mat.Matrix) ([]float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.decisionFunction(X, "DecisionFunction")
}

func (a *AdaBoostClassifier) decisionFunction(X mat.Matrix, method string) ([]float64, error) {
	if len(a.estimators) == 0 {
		return nil, errors.NewNotTrainedError(modelName, method)
	}
	rows, cols := X.Dims()
	if err := a.state.RequireFeatures(modelName+"."+method, cols); err != nil {
		return nil, err
	}

	scores := make([]float64, rows)
	var (
		errMu    sync.Mutex
		firstErr error
	)
	parallel.ParallelizeWithThreshold(rows, a.parallelThreshold, func(start, end int) {
		chunk := rowRange{m: X, start: start, end: end}
		for k, est := range a.estimators {
			pred, err := est.Predict(chunk)
			if err == nil {
				err = checkPredictions(pred, end-start)
			}
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "%s: member %d", method, k+1)
				}
				errMu.Unlock()
				return
			}
			for i, p := range pred {
				scores[start+i] += a.alphas[k] * p
			}
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return scores, nil
}

// Score returns the accuracy of Predict(X) against y.
func (a *AdaBoostClassifier) Score(X mat.Matrix, y []float64) (float64, error) {
	pred, err := a.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(y, pred)
}

// Fit trains on a column vector y (n × 1).
func (a *AdaBoostClassifier) Fit(X, y mat.Matrix) error {
	rows, cols := y.Dims()
	if cols != 1 {
		return errors.NewInvalidInputErrorf(modelName+".Fit", "y must be a column vector, got shape (%d, %d)", rows, cols)
	}
	labels := make([]float64, rows)
	for i := range labels {
		labels[i] = y.At(i, 0)
	}
	return a.Train(X, labels)
}

// PredictMatrix returns Predict(X) as a column vector.
func (a *AdaBoostClassifier) PredictMatrix(X mat.Matrix) (mat.Matrix, error) {
	pred, err := a.Predict(X)
	if err != nil {
		return nil, err
	}
	if len(pred) == 0 {
		return &mat.Dense{}, nil
	}
	return mat.NewDense(len(pred), 1, pred), nil
}

// NEstimators returns the configured number of rounds.
func (a *AdaBoostClassifier) NEstimators() int {
	return a.nEstimators
}

// IsTrained reports whether the ensemble has at least one member.
func (a *AdaBoostClassifier) IsTrained() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.estimators) > 0
}

// NFeatures returns the feature count seen by Train, or 0.
func (a *AdaBoostClassifier) NFeatures() int {
	nFeatures, _ := a.state.GetDimensions()
	return nFeatures
}

// Estimators returns the members in round order.
func (a *AdaBoostClassifier) Estimators() []model.WeakLearner {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.WeakLearner(nil), a.estimators...)
}

// Alphas returns the member reliabilities in round order.
func (a *AdaBoostClassifier) Alphas() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.alphas...)
}

// ErrorRates returns the weighted error rate of every round.
func (a *AdaBoostClassifier) ErrorRates() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.errorRates...)
}

// SampleWeights returns the sample distribution after the last round.
func (a *AdaBoostClassifier) SampleWeights() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.sampleWeights...)
}

// rowRange is a read-only view of rows [start, end) of m.
type rowRange struct {
	m          mat.Matrix
	start, end int
}

func (r rowRange) Dims() (int, int) {
	_, c := r.m.Dims()
	return r.end - r.start, c
}

func (r rowRange) At(i, j int) float64 {
	return r.m.At(r.start+i, j)
}

func (r rowRange) T() mat.Matrix {
	return mat.Transpose{Matrix: r}
}
