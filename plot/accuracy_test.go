package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/adaboost/model_selection"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
)

func TestAccuracyCurve(t *testing.T) {
	points := []CurvePoint{
		{NEstimators: 1, Mean: 0.70, Std: 0.03},
		{NEstimators: 10, Mean: 0.82, Std: 0.02},
		{NEstimators: 50, Mean: 0.91, Std: 0.01},
	}

	for _, ext := range []string{"png", "svg"} {
		path := filepath.Join(t.TempDir(), "curve."+ext)
		if err := AccuracyCurve(points, path); err != nil {
			t.Fatalf("AccuracyCurve(%s) failed: %v", ext, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("plot not written: %v", err)
		}
		if info.Size() == 0 {
			t.Errorf("%s plot is empty", ext)
		}
	}
}

func TestAccuracyCurveErrors(t *testing.T) {
	if err := AccuracyCurve(nil, filepath.Join(t.TempDir(), "x.png")); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
	points := []CurvePoint{{NEstimators: 1, Mean: 0.5}}
	if err := AccuracyCurve(points, filepath.Join(t.TempDir(), "curve.unknown")); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}

func TestFoldScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folds.png")
	if err := FoldScores([]float64{0.9, 0.85, 0.95}, "n_estimators=50", path); err != nil {
		t.Fatalf("FoldScores failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("plot not written: %v", err)
	}
	if err := FoldScores(nil, "empty", path); err == nil {
		t.Error("expected an error for no scores")
	}
}

func TestCurveFromSweep(t *testing.T) {
	sweep := []model_selection.SweepPoint{
		{NEstimators: 5, Result: &model_selection.CVResult{Mean: 0.8, Std: 0.1}},
	}
	got := CurveFromSweep(sweep)
	if len(got) != 1 || got[0] != (CurvePoint{NEstimators: 5, Mean: 0.8, Std: 0.1}) {
		t.Errorf("CurveFromSweep() = %+v", got)
	}
}
