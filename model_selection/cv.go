package model_selection

import (
	"context"
	"math"
	"time"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/core/parallel"
	"github.com/YuminosukeSato/adaboost/metrics"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/YuminosukeSato/adaboost/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ModelFactory returns a fresh, untrained classifier. CrossValidate calls it
// once per fold.
type ModelFactory func() model.Classifier

// CVResult stores cross-validation results
type CVResult struct {
	// FoldScores is the test accuracy of every fold, in fold order.
	FoldScores []float64
	// TrainScores is the training accuracy of every fold.
	TrainScores []float64
	FitTimes    []time.Duration
	// Mean and Std summarise FoldScores; Std is the sample standard
	// deviation and 0 for a single fold.
	Mean float64
	Std  float64
}

// CVOption is a functional option for CrossValidate and EstimatorSweep.
type CVOption func(*cvConfig)

type cvConfig struct {
	logger  log.Logger
	workers int
}

// WithCVLogger sets the logger used for per-fold records.
func WithCVLogger(logger log.Logger) CVOption {
	return func(c *cvConfig) {
		c.logger = logger
	}
}

// WithWorkers sets how many folds are trained concurrently. The default 1
// trains folds one after another.
func WithWorkers(n int) CVOption {
	return func(c *cvConfig) {
		c.workers = n
	}
}

func newCVConfig(opts []CVOption) *cvConfig {
	c := &cvConfig{
		logger:  log.GetLoggerWithName("model_selection"),
		workers: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CrossValidate trains a fresh model from newModel on the training part of
// every fold and scores its accuracy on the test part.
//
// Cancelling ctx stops scheduling new folds; the context error is returned.
func CrossValidate(ctx context.Context, newModel ModelFactory, X mat.Matrix, y []float64,
	splitter Splitter, opts ...CVOption) (*CVResult, error) {

	rows, _ := X.Dims()
	if rows != len(y) {
		return nil, errors.NewDimensionError("CrossValidate", rows, len(y), 0)
	}
	folds, err := splitter.Split(y)
	if err != nil {
		return nil, err
	}
	return crossValidateFolds(ctx, newModel, X, y, folds, newCVConfig(opts))
}

func crossValidateFolds(ctx context.Context, newModel ModelFactory, X mat.Matrix, y []float64,
	folds []Fold, cfg *cvConfig) (*CVResult, error) {

	nFolds := len(folds)
	result := &CVResult{
		FoldScores:  make([]float64, nFolds),
		TrainScores: make([]float64, nFolds),
		FitTimes:    make([]time.Duration, nFolds),
	}
	logger := cfg.logger.With(log.OperationKey, log.OperationCrossValidate)

	foldErrs := make([]error, nFolds)
	parallel.ParallelizeN(nFolds, cfg.workers, func(start, end int) {
		for idx := start; idx < end; idx++ {
			if err := ctx.Err(); err != nil {
				foldErrs[idx] = err
				return
			}
			train, test, fitTime, err := runFold(newModel, X, y, folds[idx])
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d", idx+1)
				return
			}
			result.TrainScores[idx], result.FoldScores[idx], result.FitTimes[idx] = train, test, fitTime
			logger.Debug("Fold finished",
				log.FoldKey, idx+1,
				log.AccuracyKey, test,
				log.DurationMsKey, fitTime.Milliseconds(),
			)
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}

	result.Mean, result.Std = stat.MeanStdDev(result.FoldScores, nil)
	if nFolds < 2 || math.IsNaN(result.Std) {
		result.Std = 0
	}
	return result, nil
}

func runFold(newModel ModelFactory, X mat.Matrix, y []float64, fold Fold) (train, test float64, fitTime time.Duration, err error) {
	trainX, trainY := selectRows(X, y, fold.TrainIndices)
	testX, testY := selectRows(X, y, fold.TestIndices)

	clf := newModel()
	start := time.Now()
	if err := clf.Train(trainX, trainY); err != nil {
		return 0, 0, 0, err
	}
	fitTime = time.Since(start)

	if train, err = score(clf, trainX, trainY); err != nil {
		return 0, 0, 0, err
	}
	if test, err = score(clf, testX, testY); err != nil {
		return 0, 0, 0, err
	}
	return train, test, fitTime, nil
}

func score(clf model.Classifier, X mat.Matrix, y []float64) (float64, error) {
	pred, err := clf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(y, pred)
}

// selectRows copies the rows at indices into a new matrix.
func selectRows(X mat.Matrix, y []float64, indices []int) (*mat.Dense, []float64) {
	_, cols := X.Dims()
	sub := mat.NewDense(len(indices), cols, nil)
	subY := make([]float64, len(indices))
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			sub.Set(i, j, X.At(idx, j))
		}
		subY[i] = y[idx]
	}
	return sub, subY
}

// SweepPoint is the cross-validated accuracy of one ensemble size.
type SweepPoint struct {
	NEstimators int
	Result      *CVResult
}

// EstimatorSweep cross-validates one model per ensemble size. All sizes
// share the same folds.
func EstimatorSweep(ctx context.Context, sizes []int, newModel func(nEstimators int) model.Classifier,
	X mat.Matrix, y []float64, splitter Splitter, opts ...CVOption) ([]SweepPoint, error) {

	if len(sizes) == 0 {
		return nil, errors.NewValidationError("sizes", "at least one ensemble size is required", sizes)
	}
	rows, _ := X.Dims()
	if rows != len(y) {
		return nil, errors.NewDimensionError("EstimatorSweep", rows, len(y), 0)
	}
	folds, err := splitter.Split(y)
	if err != nil {
		return nil, err
	}

	cfg := newCVConfig(opts)
	points := make([]SweepPoint, 0, len(sizes))
	for _, n := range sizes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := crossValidateFolds(ctx, func() model.Classifier { return newModel(n) }, X, y, folds, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "n_estimators=%d", n)
		}
		cfg.logger.Info("Ensemble size evaluated",
			log.EstimatorsKey, n,
			log.AccuracyKey, result.Mean,
			"accuracy_std", result.Std,
		)
		points = append(points, SweepPoint{NEstimators: n, Result: result})
	}
	return points, nil
}
