package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
)

// LabelBinarizer maps one positive class to +1 and every other class to -1.
type LabelBinarizer struct {
	state *model.StateManager

	// Positive is the class mapped to +1.
	Positive string

	// Classes holds the sorted distinct labels seen by Fit.
	Classes []string

	// Negative is the class returned by InverseTransform for -1: the first
	// class of Classes other than Positive.
	Negative string
}

// NewLabelBinarizer returns a binarizer for the given positive class.
func NewLabelBinarizer(positive string) *LabelBinarizer {
	return &LabelBinarizer{state: model.NewStateManager(), Positive: positive}
}

// Fit learns the label vocabulary. The positive class must be present.
func (b *LabelBinarizer) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LabelBinarizer.Fit")
	}
	seen := make(map[string]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	if _, ok := seen[b.Positive]; !ok {
		return errors.NewValidationError("positive", "class not present in labels", b.Positive)
	}

	b.Classes = b.Classes[:0]
	for l := range seen {
		b.Classes = append(b.Classes, l)
	}
	sort.Strings(b.Classes)

	b.Negative = ""
	for _, l := range b.Classes {
		if l != b.Positive {
			b.Negative = l
			break
		}
	}
	b.state.SetFitted(1, len(labels))
	return nil
}

// Transform maps labels to ±1. It does not require Fit.
func (b *LabelBinarizer) Transform(labels []string) []float64 {
	out := make([]float64, len(labels))
	for i, l := range labels {
		if l == b.Positive {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out
}

// FitTransform calls Fit then Transform.
func (b *LabelBinarizer) FitTransform(labels []string) ([]float64, error) {
	if err := b.Fit(labels); err != nil {
		return nil, err
	}
	return b.Transform(labels), nil
}

// InverseTransform maps +1 to Positive and -1 to Negative.
func (b *LabelBinarizer) InverseTransform(y []float64) ([]string, error) {
	if err := b.state.RequireFitted("LabelBinarizer", "InverseTransform"); err != nil {
		return nil, err
	}
	out := make([]string, len(y))
	for i, v := range y {
		switch v {
		case 1:
			out[i] = b.Positive
		case -1:
			out[i] = b.Negative
		default:
			return nil, errors.NewValidationError("y", "labels must be -1 or +1", v)
		}
	}
	return out, nil
}
