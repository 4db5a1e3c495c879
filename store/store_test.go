package store

import (
	"testing"

	"github.com/YuminosukeSato/adaboost/ensemble"
	"github.com/YuminosukeSato/adaboost/model_selection"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/YuminosukeSato/adaboost/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(id string) *Report {
	r := &Report{ID: id, Dataset: "tic-tac-toe.data", Positive: "positive", Folds: 5, Seed: 42}
	r.AddSweep([]model_selection.SweepPoint{
		{NEstimators: 1, Result: &model_selection.CVResult{FoldScores: []float64{0.7, 0.72}, Mean: 0.71, Std: 0.014}},
		{NEstimators: 50, Result: &model_selection.CVResult{FoldScores: []float64{0.95, 0.97}, Mean: 0.96, Std: 0.014}},
	})
	return r
}

func TestReportRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveReport(sampleReport("run-b")))
	require.NoError(t, s.SaveReport(sampleReport("run-a")))

	got, err := s.LoadReport("run-b")
	require.NoError(t, err)
	assert.Equal(t, "tic-tac-toe.data", got.Dataset)
	assert.False(t, got.CreatedAt.IsZero())
	require.Len(t, got.Sizes, 2)
	assert.Equal(t, []float64{0.95, 0.97}, got.Sizes[1].FoldScores)

	best, ok := got.Best()
	require.True(t, ok)
	assert.Equal(t, 50, best.NEstimators)

	reports, err := s.ListReports()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "run-a", reports[0].ID)
	assert.Equal(t, "run-b", reports[1].ID)

	require.NoError(t, s.DeleteReport("run-a"))
	_, err = s.LoadReport("run-a")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	assert.True(t, errors.Is(s.DeleteReport("run-a"), ErrNotFound))
}

func TestSaveReportRequiresID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.SaveReport(&Report{}))
}

func TestEmptyReportHasNoBest(t *testing.T) {
	_, ok := (&Report{}).Best()
	assert.False(t, ok)
}

func TestModelRoundTrip(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	logger, _ := log.NewTestLogger(log.LevelError)
	X := mat.NewDense(6, 2, []float64{
		0, 1,
		1, 1,
		2, 0,
		3, 0,
		4, 1,
		5, 0,
	})
	y := []float64{-1, -1, -1, 1, 1, 1}

	clf := ensemble.NewAdaBoostClassifier(ensemble.WithNEstimators(4), ensemble.WithLogger(logger))
	require.NoError(t, clf.Train(X, y))
	require.NoError(t, s.SaveModel("tictactoe-50", clf))

	restored, err := s.LoadModel("tictactoe-50", ensemble.WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, clf.Alphas(), restored.Alphas())

	want, err := clf.Predict(X)
	require.NoError(t, err)
	got, err := restored.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ids, err := s.ListModels()
	require.NoError(t, err)
	assert.Equal(t, []string{"tictactoe-50"}, ids)

	_, err = s.LoadModel("missing")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	assert.Error(t, s.SaveModel("", clf))
}
