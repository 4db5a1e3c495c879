package ensemble

import (
	"fmt"
	"io"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/YuminosukeSato/adaboost/tree"
)

// ExportWeights returns the learned state as a serialisable document.
// Only ensembles of decision stumps can be exported.
func (a *AdaBoostClassifier) ExportWeights() (*model.EnsembleWeights, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	w := &model.EnsembleWeights{
		ModelType:   modelName,
		Version:     model.WeightsFormatVersion,
		NEstimators: a.nEstimators,
		NFeatures:   a.NFeatures(),
		Alphas:      append([]float64(nil), a.alphas...),
		ErrorRates:  append([]float64(nil), a.errorRates...),
		IsTrained:   len(a.estimators) > 0,
	}
	for i, est := range a.estimators {
		stump, ok := est.(*tree.DecisionStump)
		if !ok {
			return nil, errors.NewValueError("ExportWeights",
				fmt.Sprintf("member %d is %T, only decision stumps can be exported", i+1, est))
		}
		w.Stumps = append(w.Stumps, stump.Weights())
	}
	return w, nil
}

// ImportWeights replaces the ensemble with the members described by w.
func (a *AdaBoostClassifier) ImportWeights(w *model.EnsembleWeights) error {
	if w == nil {
		return errors.NewValueError("ImportWeights", "nil weights")
	}
	if w.ModelType != modelName {
		return errors.NewValidationError("model_type", "expected "+modelName, w.ModelType)
	}
	if err := w.Validate(); err != nil {
		return err
	}

	estimators := make([]model.WeakLearner, len(w.Stumps))
	for i, sw := range w.Stumps {
		stump, err := tree.NewDecisionStumpFromWeights(sw, w.NFeatures)
		if err != nil {
			return errors.Wrapf(err, "member %d", i+1)
		}
		estimators[i] = stump
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	a.nEstimators = w.NEstimators
	if !w.IsTrained {
		return nil
	}
	a.estimators = estimators
	a.alphas = append([]float64(nil), w.Alphas...)
	a.errorRates = append([]float64(nil), w.ErrorRates...)
	a.state.SetFitted(w.NFeatures, 0)
	return nil
}

// Save writes the exported weights to path in gob format.
func (a *AdaBoostClassifier) Save(path string) error {
	w, err := a.ExportWeights()
	if err != nil {
		return err
	}
	return model.SaveModel(w, path)
}

// Load replaces the ensemble with the one stored at path by Save.
func (a *AdaBoostClassifier) Load(path string) error {
	var w model.EnsembleWeights
	if err := model.LoadModel(&w, path); err != nil {
		return err
	}
	return a.ImportWeights(&w)
}

// SaveToWriter writes the exported weights to wr in gob format.
func (a *AdaBoostClassifier) SaveToWriter(wr io.Writer) error {
	w, err := a.ExportWeights()
	if err != nil {
		return err
	}
	return model.SaveModelToWriter(w, wr)
}

// LoadFromReader replaces the ensemble with one read from r.
func (a *AdaBoostClassifier) LoadFromReader(r io.Reader) error {
	var w model.EnsembleWeights
	if err := model.LoadModelFromReader(&w, r); err != nil {
		return err
	}
	return a.ImportWeights(&w)
}
