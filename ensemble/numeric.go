package ensemble

import (
	"math"

	"github.com/YuminosukeSato/adaboost/pkg/errors"
)

const (
	// Delta bounds the weighted error rate away from 0 and 1 so that the
	// reliability stays finite. |Reliability| <= 0.5*ln((1-Delta)/Delta) ≈ 11.51.
	Delta = 1e-10

	// TieLabel is returned by Predict when the weighted vote sums to exactly 0.
	TieLabel = 1.0
)

// ClampErrorRate clamps eps to [Delta, 1-Delta]. The end points are
// included, so a perfect learner gets exactly the largest alpha.
func ClampErrorRate(eps float64) float64 {
	return errors.ClipValue(eps, Delta, 1-Delta)
}

// Reliability returns the member weight alpha = 0.5*ln((1-eps)/eps) of a
// weak learner with weighted error eps. eps is clamped first.
//
// Reliability(1-eps) == -Reliability(eps) holds exactly; 1-Delta has no
// exact float64 form, so errors above one half are mirrored.
func Reliability(eps float64) float64 {
	if eps > 0.5 {
		return -Reliability(1 - eps)
	}
	eps = ClampErrorRate(eps)
	return 0.5 * math.Log((1-eps)/eps)
}

// WeightedError returns the weight of the misclassified samples relative to
// the total weight.
func WeightedError(weights, pred, y []float64) (float64, error) {
	var total, miss float64
	for i, w := range weights {
		total += w
		if pred[i] != y[i] {
			miss += w
		}
	}
	if err := errors.CheckPositiveSum("error_rate", total, 0); err != nil {
		return 0, errors.Wrapf(errors.Mark(err, errors.ErrZeroWeightSum), "error rate: weight sum %g", total)
	}
	return miss / total, nil
}

// UpdateWeights returns w_i*exp(-alpha*pred_i*y_i) renormalised to sum 1.
// weights is not modified.
func UpdateWeights(weights, pred, y []float64, alpha float64) ([]float64, error) {
	out := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		out[i] = w * math.Exp(-alpha*pred[i]*y[i])
		sum += out[i]
	}
	if err := errors.CheckPositiveSum("weight_update", sum, 0); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrZeroWeightSum), "weight update: weight sum %g", sum)
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// sign maps a weighted vote to a label; 0 maps to TieLabel.
func sign(score float64) float64 {
	switch {
	case score > 0:
		return 1
	case score < 0:
		return -1
	default:
		return TieLabel
	}
}
