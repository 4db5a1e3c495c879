// Package plot renders cross-validation results as charts. The output
// format follows the file extension (png, svg, pdf, ...).
package plot

import (
	"fmt"

	"github.com/YuminosukeSato/adaboost/model_selection"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// CurvePoint is the mean and spread of the accuracy for one ensemble size.
type CurvePoint struct {
	NEstimators int
	Mean        float64
	Std         float64
}

// CurveFromSweep converts sweep results into curve points.
func CurveFromSweep(points []model_selection.SweepPoint) []CurvePoint {
	out := make([]CurvePoint, len(points))
	for i, p := range points {
		out[i] = CurvePoint{NEstimators: p.NEstimators, Mean: p.Result.Mean, Std: p.Result.Std}
	}
	return out
}

// accuracyBars pairs the curve with symmetric one-std error bars.
type accuracyBars struct {
	plotter.XYs
	plotter.YErrors
}

// AccuracyCurve draws mean accuracy against ensemble size with ±1 std
// error bars and saves it to path.
func AccuracyCurve(points []CurvePoint, path string) error {
	if len(points) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "AccuracyCurve")
	}

	p := gplot.New()
	p.Title.Text = "AdaBoost cross-validated accuracy"
	p.X.Label.Text = "number of estimators"
	p.Y.Label.Text = "accuracy"
	p.Add(plotter.NewGrid())

	data := accuracyBars{
		XYs:     make(plotter.XYs, len(points)),
		YErrors: make(plotter.YErrors, len(points)),
	}
	for i, pt := range points {
		data.XYs[i] = plotter.XY{X: float64(pt.NEstimators), Y: pt.Mean}
		data.YErrors[i].Low = pt.Std
		data.YErrors[i].High = pt.Std
	}

	line, err := plotter.NewLine(data.XYs)
	if err != nil {
		return errors.Wrap(err, "failed to build accuracy line")
	}
	scatter, err := plotter.NewScatter(data.XYs)
	if err != nil {
		return errors.Wrap(err, "failed to build accuracy points")
	}
	bars, err := plotter.NewYErrorBars(data)
	if err != nil {
		return errors.Wrap(err, "failed to build error bars")
	}
	p.Add(line, scatter, bars)

	return save(p, path)
}

// FoldScores draws one bar per fold accuracy and saves it to path.
func FoldScores(scores []float64, title, path string) error {
	if len(scores) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "FoldScores")
	}

	p := gplot.New()
	p.Title.Text = title
	p.Y.Label.Text = "accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	bars, err := plotter.NewBarChart(plotter.Values(scores), vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "failed to build fold chart")
	}
	p.Add(bars)

	names := make([]string, len(scores))
	for i := range names {
		names[i] = fmt.Sprintf("fold %d", i+1)
	}
	p.NominalX(names...)

	return save(p, path)
}

func save(p *gplot.Plot, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %s", path)
	}
	return nil
}
