// Package adaboost is a boosting library for binary classification.
//
// The library trains discrete AdaBoost ensembles of weighted weak learners
// whose labels are -1 and +1, evaluates them with k-fold cross validation
// and persists reports and trained ensembles.
//
// # Packages
//
//   - ensemble: AdaBoostClassifier, the boosting loop and its numeric policy
//   - tree: DecisionStump, the default weak learner
//   - core/model: learner contracts, fitted-state helpers, weight documents
//   - preprocessing: one-hot encoding of categorical columns, label binarization
//   - datasets: the tic-tac-toe endgame loader
//   - metrics: accuracy, confusion counts, AUC
//   - model_selection: KFold, StratifiedKFold, CrossValidate, EstimatorSweep
//   - plot: accuracy curves and per-fold charts
//   - store: BadgerDB persistence of reports and models
//   - pkg/errors, pkg/log: structured errors and logging
//
// # Quick Start
//
//	ds, err := datasets.LoadTicTacToeFile("tic-tac-toe.data", false, "positive")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	clf := ensemble.NewAdaBoostClassifier(ensemble.WithNEstimators(50))
//	if err := clf.Train(ds.X, ds.Y); err != nil {
//	    log.Fatal(err)
//	}
//	labels, err := clf.Predict(ds.X)
//
// Prediction is the sign of the alpha-weighted vote of the members; a vote
// of exactly zero maps to +1. Training always starts from an empty
// ensemble, so calling Train twice does not add rounds.
//
// # Command line
//
// cmd/adaboost cross-validates a range of ensemble sizes on the data set,
// prints the accuracy table and can write a plot and store the run.
package adaboost
