package ensemble

import (
	"bytes"
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/YuminosukeSato/adaboost/pkg/log"
	"github.com/YuminosukeSato/adaboost/tree"
	"gonum.org/v1/gonum/mat"
)

// fixedLearner ignores its input and predicts a fixed vector.
type fixedLearner struct {
	pred    []float64
	fitErr  error
	doPanic bool
}

func (f *fixedLearner) Fit(X mat.Matrix, y, w []float64) error {
	if f.doPanic {
		panic("fit exploded")
	}
	return f.fitErr
}

func (f *fixedLearner) Predict(X mat.Matrix) ([]float64, error) {
	return append([]float64(nil), f.pred...), nil
}

func fixed(l *fixedLearner) model.WeakLearnerFactory {
	return func() model.WeakLearner { return l }
}

func quietLogger() log.Logger {
	logger, _ := log.NewTestLogger(log.LevelError)
	return logger
}

// noisyDataset returns n rows of two features labelled by x0 + x1 > 1 with
// roughly 10% label noise.
func noisyDataset(n int, seed uint64) (*mat.Dense, []float64) {
	r := rand.New(rand.NewPCG(seed, seed))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a, b := r.Float64(), r.Float64()
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		y[i] = -1
		if a+b > 1 {
			y[i] = 1
		}
		if r.Float64() < 0.1 {
			y[i] = -y[i]
		}
	}
	return X, y
}

func TestTrainPerfectlySeparableData(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 6,
		3, 5,
		4, 6,
	})
	y := []float64{1, 1, -1, -1}

	clf := NewAdaBoostClassifier(WithNEstimators(1), WithLogger(quietLogger()))
	if err := clf.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if got := clf.ErrorRates(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("ErrorRates() = %v, want [0]", got)
	}
	alpha := clf.Alphas()[0]
	if math.IsInf(alpha, 0) || math.IsNaN(alpha) {
		t.Fatalf("alpha must be finite, got %v", alpha)
	}
	if alpha != Reliability(0) || alpha < 11.5 || alpha > 11.52 {
		t.Errorf("alpha = %v, want the clamped bound %v", alpha, Reliability(0))
	}

	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := range y {
		if pred[i] != y[i] {
			t.Errorf("pred[%d] = %v, want %v", i, pred[i], y[i])
		}
	}
}

func TestTrainWithZeroEstimators(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	clf := NewAdaBoostClassifier(WithNEstimators(0), WithLogger(quietLogger()))
	if err := clf.Train(X, []float64{-1, 1}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if clf.IsTrained() || len(clf.Estimators()) != 0 {
		t.Fatal("ensemble with zero rounds must have no members")
	}

	_, err := clf.Predict(X)
	var notTrained *errors.NotTrainedError
	if !errors.As(err, &notTrained) {
		t.Fatalf("expected *NotTrainedError, got %v", err)
	}
	if notTrained.Method != "Predict" {
		t.Errorf("Method = %q, want Predict", notTrained.Method)
	}
}

func TestPredictBeforeTrain(t *testing.T) {
	clf := NewAdaBoostClassifier()
	var notTrained *errors.NotTrainedError
	if _, err := clf.Predict(mat.NewDense(1, 1, nil)); !errors.As(err, &notTrained) {
		t.Errorf("Predict: expected *NotTrainedError, got %v", err)
	}
	if _, err := clf.DecisionFunction(mat.NewDense(1, 1, nil)); !errors.As(err, &notTrained) {
		t.Errorf("DecisionFunction: expected *NotTrainedError, got %v", err)
	}
}

func TestTrainInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		X    mat.Matrix
		y    []float64
		n    int
	}{
		{name: "row mismatch", X: mat.NewDense(3, 2, nil), y: []float64{1, -1}, n: 5},
		{name: "empty matrix", X: &mat.Dense{}, y: nil, n: 5},
		{name: "label outside domain", X: mat.NewDense(2, 1, []float64{0, 1}), y: []float64{1, 0}, n: 5},
		{name: "negative estimators", X: mat.NewDense(2, 1, []float64{0, 1}), y: []float64{1, -1}, n: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := NewAdaBoostClassifier(WithNEstimators(tt.n), WithLogger(quietLogger()))
			err := clf.Train(tt.X, tt.y)
			var invalid *errors.InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidInputError, got %v", err)
			}
			if clf.IsTrained() {
				t.Error("ensemble must stay untrained after invalid input")
			}
		})
	}
}

func TestTrainLogsInvalidEnsembleSize(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	clf := NewAdaBoostClassifier(WithNEstimators(-3), WithLogger(logger))

	if err := clf.Train(mat.NewDense(2, 1, []float64{0, 1}), []float64{1, -1}); err == nil {
		t.Fatal("expected an error for a negative ensemble size")
	}
	if len(logger.EntriesWithMessage("Invalid ensemble size")) != 1 {
		t.Error("missing error record for the rejected ensemble size")
	}
	if !logger.ContainsField(log.ErrorCodeKey, log.ErrorInvalidInput) {
		t.Errorf("records should carry %s=%s", log.ErrorCodeKey, log.ErrorInvalidInput)
	}
}

func TestTrainWeakLearnerContractViolations(t *testing.T) {
	y := []float64{1, -1, 1}

	tests := []struct {
		name    string
		learner *fixedLearner
		target  error
	}{
		{name: "fit error", learner: &fixedLearner{pred: y, fitErr: errors.New("boom")}},
		{name: "panic", learner: &fixedLearner{pred: y, doPanic: true}},
		{name: "prediction count", learner: &fixedLearner{pred: []float64{1, -1}}, target: errors.ErrPredictionCount},
		{name: "prediction domain", learner: &fixedLearner{pred: []float64{1, 0, 1}}, target: errors.ErrPredictionDomain},
	}

	X := mat.NewDense(3, 1, []float64{0, 1, 2})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := NewAdaBoostClassifier(WithNEstimators(3), WithLogger(quietLogger()))
			// A successful run first, so that the failure has state to discard.
			if err := clf.Train(X, y); err != nil {
				t.Fatalf("initial Train failed: %v", err)
			}
			WithWeakLearner(fixed(tt.learner))(clf)

			err := clf.Train(X, y)
			var trainErr *errors.TrainingError
			if !errors.As(err, &trainErr) {
				t.Fatalf("expected *TrainingError, got %v", err)
			}
			if trainErr.Round != 1 {
				t.Errorf("Round = %d, want 1", trainErr.Round)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v in chain, got %v", tt.target, err)
			}
			if tt.learner.doPanic {
				var panicErr *errors.PanicError
				if !errors.As(err, &panicErr) {
					t.Errorf("expected *PanicError in chain, got %v", err)
				}
			}
			if clf.IsTrained() || len(clf.Alphas()) != 0 {
				t.Error("failed training must leave the ensemble untrained")
			}
		})
	}
}

func TestChanceLearnerLeavesWeightsAndTiesToPositive(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := []float64{1, -1, 1, -1}

	var history []RoundInfo
	clf := NewAdaBoostClassifier(
		WithNEstimators(2),
		WithWeakLearner(fixed(&fixedLearner{pred: []float64{1, 1, 1, 1}})),
		WithRoundCallback(RecordHistory(&history)),
		WithLogger(quietLogger()),
	)
	if err := clf.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	for _, round := range history {
		if round.ErrorRate != 0.5 || round.Alpha != 0 {
			t.Errorf("round %d: eps=%v alpha=%v, want 0.5 and 0", round.Round, round.ErrorRate, round.Alpha)
		}
		for i, w := range round.Weights {
			if math.Abs(w-0.25) > 1e-15 {
				t.Errorf("round %d: weight[%d] = %v, want 0.25", round.Round, i, w)
			}
		}
	}

	scores, err := clf.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction failed: %v", err)
	}
	pred, _ := clf.Predict(X)
	for i := range pred {
		if scores[i] != 0 {
			t.Errorf("score[%d] = %v, want 0", i, scores[i])
		}
		if pred[i] != TieLabel {
			t.Errorf("pred[%d] = %v, want the tie label %v", i, pred[i], TieLabel)
		}
	}
}

func TestWeightsStayNormalisedEveryRound(t *testing.T) {
	X, y := noisyDataset(200, 7)

	var history []RoundInfo
	clf := NewAdaBoostClassifier(
		WithNEstimators(25),
		WithRoundCallback(RecordHistory(&history)),
		WithLogger(quietLogger()),
	)
	if err := clf.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if len(history) != 25 {
		t.Fatalf("recorded %d rounds, want 25", len(history))
	}

	for _, round := range history {
		var sum float64
		for i, w := range round.Weights {
			if !(w > 0) {
				t.Fatalf("round %d: weight[%d] = %v is not positive", round.Round, i, w)
			}
			sum += w
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("round %d: weights sum to %v", round.Round, sum)
		}
		if math.IsInf(round.Alpha, 0) || math.IsNaN(round.Alpha) {
			t.Errorf("round %d: alpha %v is not finite", round.Round, round.Alpha)
		}
	}

	final := clf.SampleWeights()
	last := history[len(history)-1].Weights
	for i := range final {
		if final[i] != last[i] {
			t.Fatalf("SampleWeights()[%d] = %v, last round recorded %v", i, final[i], last[i])
		}
	}

	acc, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if acc < 0.7 {
		t.Errorf("training accuracy %v is unexpectedly low", acc)
	}
}

func TestRoundCallbackErrorAbortsTraining(t *testing.T) {
	X, y := noisyDataset(50, 3)
	stop := errors.New("stop here")

	clf := NewAdaBoostClassifier(
		WithNEstimators(5),
		WithRoundCallback(func(info RoundInfo) error {
			if info.Round == 2 {
				return stop
			}
			return nil
		}),
		WithLogger(quietLogger()),
	)
	err := clf.Train(X, y)
	var trainErr *errors.TrainingError
	if !errors.As(err, &trainErr) || trainErr.Round != 2 {
		t.Fatalf("expected *TrainingError at round 2, got %v", err)
	}
	if !errors.Is(err, stop) {
		t.Errorf("callback error should be in the chain: %v", err)
	}
	if clf.IsTrained() {
		t.Error("aborted training must leave the ensemble untrained")
	}
}

func TestRetrainStartsFresh(t *testing.T) {
	X1, y1 := noisyDataset(60, 1)
	X2, y2 := noisyDataset(80, 2)

	clf := NewAdaBoostClassifier(WithNEstimators(4), WithLogger(quietLogger()))
	if err := clf.Train(X1, y1); err != nil {
		t.Fatalf("first Train failed: %v", err)
	}
	if err := clf.Train(X2, y2); err != nil {
		t.Fatalf("second Train failed: %v", err)
	}

	fresh := NewAdaBoostClassifier(WithNEstimators(4), WithLogger(quietLogger()))
	if err := fresh.Train(X2, y2); err != nil {
		t.Fatalf("fresh Train failed: %v", err)
	}

	if len(clf.Alphas()) != 4 || len(clf.SampleWeights()) != 80 {
		t.Fatalf("retrained ensemble has %d members and %d weights", len(clf.Alphas()), len(clf.SampleWeights()))
	}
	a, b := clf.Alphas(), fresh.Alphas()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("alpha[%d]: retrained %v, fresh %v", i, a[i], b[i])
		}
	}
}

func TestPredictIsDeterministicAcrossParallelism(t *testing.T) {
	X, y := noisyDataset(3000, 11)

	sequential := NewAdaBoostClassifier(WithNEstimators(10), WithParallelThreshold(math.MaxInt), WithLogger(quietLogger()))
	parallel := NewAdaBoostClassifier(WithNEstimators(10), WithParallelThreshold(16), WithLogger(quietLogger()))
	for _, clf := range []*AdaBoostClassifier{sequential, parallel} {
		if err := clf.Train(X, y); err != nil {
			t.Fatalf("Train failed: %v", err)
		}
	}

	want, err := sequential.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction failed: %v", err)
	}
	got, err := parallel.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction failed: %v", err)
	}
	again, _ := parallel.DecisionFunction(X)
	for i := range want {
		if got[i] != want[i] || again[i] != want[i] {
			t.Fatalf("row %d: sequential %v, parallel %v, repeated %v", i, want[i], got[i], again[i])
		}
	}
}

func TestPredictFeatureMismatch(t *testing.T) {
	X, y := noisyDataset(20, 5)
	clf := NewAdaBoostClassifier(WithNEstimators(2), WithLogger(quietLogger()))
	if err := clf.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	_, err := clf.Predict(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected *DimensionError, got %v", err)
	}
}

func TestFitAdapter(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	clf := NewAdaBoostClassifier(WithNEstimators(3), WithLogger(quietLogger()))

	if err := clf.Fit(X, mat.NewDense(4, 1, []float64{-1, -1, 1, 1})); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	out, err := clf.PredictMatrix(X)
	if err != nil {
		t.Fatalf("PredictMatrix failed: %v", err)
	}
	if r, c := out.Dims(); r != 4 || c != 1 {
		t.Fatalf("PredictMatrix shape = (%d, %d)", r, c)
	}
	if out.At(0, 0) != -1 || out.At(3, 0) != 1 {
		t.Errorf("unexpected predictions %v", mat.Formatted(out))
	}

	var invalid *errors.InvalidInputError
	if err := clf.Fit(X, mat.NewDense(4, 2, nil)); !errors.As(err, &invalid) {
		t.Errorf("expected *InvalidInputError for a 2-column y, got %v", err)
	}
}

func TestTrainLogsEveryRound(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	X, y := noisyDataset(40, 9)

	clf := NewAdaBoostClassifier(WithNEstimators(6), WithLogger(logger))
	if err := clf.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if n := len(logger.EntriesWithMessage("Boosting round")); n != 6 {
		t.Errorf("logged %d rounds, want 6", n)
	}
	if !logger.ContainsMessage("Training finished") {
		t.Error("missing completion record")
	}
	if !logger.ContainsField(log.ModelNameKey, modelName) {
		t.Errorf("records should carry %s", log.ModelNameKey)
	}
}

func TestExportImportWeights(t *testing.T) {
	X, y := noisyDataset(120, 21)
	clf := NewAdaBoostClassifier(WithNEstimators(8), WithLogger(quietLogger()))
	if err := clf.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	want, _ := clf.Predict(X)

	w, err := clf.ExportWeights()
	if err != nil {
		t.Fatalf("ExportWeights failed: %v", err)
	}
	data, err := w.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var decoded model.EnsembleWeights
	if err := decoded.FromJSON(data); err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	check := func(name string, restored *AdaBoostClassifier) {
		t.Helper()
		got, err := restored.Predict(X)
		if err != nil {
			t.Fatalf("%s: Predict failed: %v", name, err)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: row %d predicted %v, want %v", name, i, got[i], want[i])
			}
		}
	}

	fromJSON := NewAdaBoostClassifier()
	if err := fromJSON.ImportWeights(&decoded); err != nil {
		t.Fatalf("ImportWeights failed: %v", err)
	}
	check("json", fromJSON)

	path := filepath.Join(t.TempDir(), "ensemble.gob")
	if err := clf.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	fromFile := NewAdaBoostClassifier()
	if err := fromFile.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	check("file", fromFile)

	var buf bytes.Buffer
	if err := clf.SaveToWriter(&buf); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}
	fromReader := NewAdaBoostClassifier()
	if err := fromReader.LoadFromReader(&buf); err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	check("reader", fromReader)
}

func TestImportWeightsRejectsForeignDocuments(t *testing.T) {
	clf := NewAdaBoostClassifier()
	w := &model.EnsembleWeights{ModelType: "LGBMClassifier", Version: model.WeightsFormatVersion}
	if err := clf.ImportWeights(w); err == nil {
		t.Error("expected an error for a foreign model type")
	}
	if err := clf.ImportWeights(nil); err == nil {
		t.Error("expected an error for nil weights")
	}
}

func TestExportRejectsNonStumpMembers(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	clf := NewAdaBoostClassifier(
		WithNEstimators(1),
		WithWeakLearner(fixed(&fixedLearner{pred: []float64{-1, 1}})),
		WithLogger(quietLogger()),
	)
	if err := clf.Train(X, []float64{-1, 1}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if _, err := clf.ExportWeights(); err == nil {
		t.Error("expected an error exporting a non-stump member")
	}
}

func TestDefaultLearnerIsStump(t *testing.T) {
	X, y := noisyDataset(30, 4)
	clf := NewAdaBoostClassifier(WithNEstimators(2), WithWeakLearner(nil), WithLogger(quietLogger()))
	if clf.NEstimators() != 2 {
		t.Fatalf("NEstimators() = %d", clf.NEstimators())
	}
	if err := clf.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	for i, est := range clf.Estimators() {
		if _, ok := est.(*tree.DecisionStump); !ok {
			t.Errorf("member %d is %T, want *tree.DecisionStump", i, est)
		}
	}
	if clf.NFeatures() != 2 {
		t.Errorf("NFeatures() = %d, want 2", clf.NFeatures())
	}
}
