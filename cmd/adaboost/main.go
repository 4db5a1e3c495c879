// Command adaboost cross-validates AdaBoost ensembles of decision stumps on
// the tic-tac-toe endgame data set for a range of ensemble sizes.
//
//	adaboost --data tic-tac-toe.data --estimators 1 5 10 50 --folds 5 --plot curve.png
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/datasets"
	"github.com/YuminosukeSato/adaboost/ensemble"
	"github.com/YuminosukeSato/adaboost/model_selection"
	"github.com/YuminosukeSato/adaboost/pkg/log"
	"github.com/YuminosukeSato/adaboost/plot"
	"github.com/YuminosukeSato/adaboost/store"
	arg "github.com/alexflint/go-arg"
)

var defaultEstimators = []int{1, 5, 10, 25, 50}

type args struct {
	Data       string `arg:"--data,required" help:"path to the tic-tac-toe data file"`
	Header     bool   `arg:"--header" help:"the data file starts with a header row"`
	Positive   string `arg:"--positive" help:"class label mapped to +1"`
	Estimators []int  `arg:"--estimators" help:"ensemble sizes to evaluate (default: 1 5 10 25 50)"`
	Folds      int    `arg:"--folds" help:"number of cross-validation folds"`
	Stratified bool   `arg:"--stratified" help:"keep the class balance in every fold"`
	Seed       uint64 `arg:"--seed" help:"seed of the fold shuffle"`
	Workers    int    `arg:"--workers" help:"folds trained concurrently"`
	Plot       string `arg:"--plot" help:"write the accuracy curve to this file (png, svg, pdf)"`
	Store      string `arg:"--store" help:"BadgerDB directory for the run report and the final model"`
	RunID      string `arg:"--run-id" help:"id of the stored report (default: timestamp)"`
	LogLevel   string `arg:"--log-level" help:"debug, info, warn or error"`
}

func (args) Description() string {
	return "Cross-validate AdaBoost decision-stump ensembles on tic-tac-toe endgames."
}

func main() {
	a := args{
		Positive: datasets.DefaultPositiveClass,
		Folds:    5,
		Seed:     42,
		Workers:  1,
		LogLevel: "info",
	}
	arg.MustParse(&a)
	if len(a.Estimators) == 0 {
		a.Estimators = defaultEstimators
	}

	if err := log.SetupLogger(os.Stderr, a.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := log.GetLoggerWithName("cmd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, a, logger); err != nil {
		logger.Error("Run failed", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, a args, logger log.Logger) error {
	ds, err := datasets.LoadTicTacToeFile(a.Data, a.Header, a.Positive)
	if err != nil {
		return err
	}
	logger.Info("Data set loaded",
		log.SamplesKey, ds.NSamples(),
		log.FeaturesKey, ds.NFeatures(),
	)

	var splitter model_selection.Splitter = model_selection.NewKFold(a.Folds, true, a.Seed)
	if a.Stratified {
		splitter = model_selection.NewStratifiedKFold(a.Folds, true, a.Seed)
	}

	newModel := func(n int) model.Classifier {
		return ensemble.NewAdaBoostClassifier(ensemble.WithNEstimators(n))
	}
	points, err := model_selection.EstimatorSweep(ctx, a.Estimators, newModel, ds.X, ds.Y, splitter,
		model_selection.WithWorkers(a.Workers))
	if err != nil {
		return err
	}
	printSweep(points)

	if a.Plot != "" {
		if err := plot.AccuracyCurve(plot.CurveFromSweep(points), a.Plot); err != nil {
			return err
		}
		logger.Info("Accuracy curve written", "path", a.Plot)
	}

	if a.Store != "" {
		return saveRun(a, ds, points, logger)
	}
	return nil
}

func printSweep(points []model_selection.SweepPoint) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "n_estimators\tmean accuracy\tstd")
	for _, p := range points {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\n", p.NEstimators, p.Result.Mean, p.Result.Std)
	}
	w.Flush()
}

// saveRun stores the report and an ensemble of the best size trained on
// the whole data set.
func saveRun(a args, ds *datasets.Dataset, points []model_selection.SweepPoint, logger log.Logger) error {
	runID := a.RunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}

	s, err := store.Open(a.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	report := &store.Report{
		ID:       runID,
		Dataset:  filepath.Base(a.Data),
		Positive: a.Positive,
		Folds:    a.Folds,
		Seed:     a.Seed,
		Samples:  ds.NSamples(),
		Features: ds.NFeatures(),
	}
	report.AddSweep(points)
	if err := s.SaveReport(report); err != nil {
		return err
	}

	best, ok := report.Best()
	if !ok || best.NEstimators == 0 {
		logger.Info("Report stored", "run_id", runID)
		return nil
	}
	clf := ensemble.NewAdaBoostClassifier(ensemble.WithNEstimators(best.NEstimators))
	if err := clf.Train(ds.X, ds.Y); err != nil {
		return err
	}
	if err := s.SaveModel(runID, clf); err != nil {
		return err
	}
	logger.Info("Report and model stored",
		"run_id", runID,
		log.EstimatorsKey, best.NEstimators,
		log.AccuracyKey, best.Mean,
	)
	return nil
}
