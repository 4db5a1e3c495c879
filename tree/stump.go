// Package tree provides tree-based weak learners for boosting.
package tree

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DecisionStump is a one-split decision tree over a single feature.
//
// It predicts Polarity for rows whose Feature value is strictly greater than
// Threshold and -Polarity otherwise. Fit searches every feature, every
// midpoint between consecutive distinct values and both polarities for the
// split with the lowest weighted misclassification error. Ties keep the
// first candidate found: lowest feature index, then lowest threshold, then
// polarity +1.
type DecisionStump struct {
	State *model.StateManager

	Feature       int
	Threshold     float64
	Polarity      float64
	WeightedError float64
}

var _ model.WeakLearner = (*DecisionStump)(nil)

// NewDecisionStump returns an unfitted stump.
func NewDecisionStump() *DecisionStump {
	return &DecisionStump{State: model.NewStateManager(), Polarity: 1}
}

// NewStumpFactory returns a factory producing fresh stumps, one per round.
func NewStumpFactory() model.WeakLearnerFactory {
	return func() model.WeakLearner { return NewDecisionStump() }
}

// NewDecisionStumpFromWeights rebuilds a fitted stump from exported parameters.
func NewDecisionStumpFromWeights(w model.StumpWeights, nFeatures int) (*DecisionStump, error) {
	if w.Feature < 0 || w.Feature >= nFeatures {
		return nil, errors.NewValidationError("feature", "out of range", w.Feature)
	}
	if w.Polarity != 1 && w.Polarity != -1 {
		return nil, errors.NewValidationError("polarity", "must be -1 or +1", w.Polarity)
	}
	s := NewDecisionStump()
	s.Feature, s.Threshold, s.Polarity = w.Feature, w.Threshold, w.Polarity
	s.State.SetFitted(nFeatures, 0)
	return s, nil
}

// Weights exports the learned split.
func (s *DecisionStump) Weights() model.StumpWeights {
	return model.StumpWeights{Feature: s.Feature, Threshold: s.Threshold, Polarity: s.Polarity}
}

// NFeatures returns the number of features seen during fitting.
func (s *DecisionStump) NFeatures() int {
	nFeatures, _ := s.State.GetDimensions()
	return nFeatures
}

// Fit learns the best single split under sampleWeight.
func (s *DecisionStump) Fit(X mat.Matrix, y []float64, sampleWeight []float64) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "DecisionStump.Fit")
	}
	if len(y) != rows {
		return errors.NewDimensionError("DecisionStump.Fit", rows, len(y), 0)
	}
	if len(sampleWeight) != rows {
		return errors.NewDimensionError("DecisionStump.Fit", rows, len(sampleWeight), 0)
	}

	var wPos, wNeg float64
	for i, label := range y {
		w := sampleWeight[i]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.NewValidationError("sample_weight", "must be finite and non-negative", w)
		}
		switch label {
		case 1:
			wPos += w
		case -1:
			wNeg += w
		default:
			return errors.NewValidationError("y", "labels must be -1 or +1", label)
		}
	}
	total := wPos + wNeg
	if total <= 0 {
		return errors.NewValidationError("sample_weight", "must not sum to zero", total)
	}

	bestErr := math.Inf(1)
	order := make([]int, rows)
	col := make([]float64, rows)

	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			order[i] = i
			col[i] = X.At(i, j)
		}
		sort.SliceStable(order, func(a, b int) bool { return col[order[a]] < col[order[b]] })

		// Everything to the right of a threshold below the minimum:
		// polarity +1 predicts +1 for all rows.
		threshold := col[order[0]] - 1
		if e := wNeg; e < bestErr {
			bestErr = e
			s.Feature, s.Threshold, s.Polarity = j, threshold, 1
		}
		if e := wPos; e < bestErr {
			bestErr = e
			s.Feature, s.Threshold, s.Polarity = j, threshold, -1
		}

		var leftPos, leftNeg float64
		for k := 0; k < rows-1; k++ {
			idx := order[k]
			if y[idx] == 1 {
				leftPos += sampleWeight[idx]
			} else {
				leftNeg += sampleWeight[idx]
			}

			v, next := col[idx], col[order[k+1]]
			if v == next {
				continue
			}
			threshold = v + (next-v)/2

			errPos := leftPos + (wNeg - leftNeg)
			if errPos < bestErr {
				bestErr = errPos
				s.Feature, s.Threshold, s.Polarity = j, threshold, 1
			}
			if errNeg := total - errPos; errNeg < bestErr {
				bestErr = errNeg
				s.Feature, s.Threshold, s.Polarity = j, threshold, -1
			}
		}
	}

	s.WeightedError = bestErr / total
	s.State.SetFitted(cols, rows)
	return nil
}

// Predict returns -1 or +1 for every row of X.
func (s *DecisionStump) Predict(X mat.Matrix) ([]float64, error) {
	if err := s.State.RequireFitted("DecisionStump", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := s.State.RequireFeatures("DecisionStump.Predict", cols); err != nil {
		return nil, err
	}

	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if X.At(i, s.Feature) > s.Threshold {
			out[i] = s.Polarity
		} else {
			out[i] = -s.Polarity
		}
	}
	return out, nil
}
