// Package metrics provides evaluation metrics for binary classifiers whose
// labels are -1 and +1.
package metrics

import (
	"sort"

	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func checkPair(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

func checkLabels(op string, y []float64) error {
	for _, v := range y {
		if v != 1 && v != -1 {
			return errors.NewValidationError("y", op+": labels must be -1 or +1", v)
		}
	}
	return nil
}

// Accuracy は正解率（一致したラベルの割合）を計算する
func Accuracy(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// AccuracyMatrix は列ベクトル形式の入力に対して正解率を計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	a, err := column("AccuracyMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	b, err := column("AccuracyMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(a, b)
}

// ClassificationError は誤分類率 (1 - Accuracy) を計算する
func ClassificationError(yTrue, yPred []float64) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// BinaryConfusion is the 2x2 confusion matrix of a ±1 classifier.
type BinaryConfusion struct {
	TP, FP, TN, FN int
}

// NewBinaryConfusion counts predictions against the true labels.
func NewBinaryConfusion(yTrue, yPred []float64) (BinaryConfusion, error) {
	var c BinaryConfusion
	if err := checkPair("NewBinaryConfusion", yTrue, yPred); err != nil {
		return c, err
	}
	if err := checkLabels("NewBinaryConfusion", yTrue); err != nil {
		return c, err
	}
	if err := checkLabels("NewBinaryConfusion", yPred); err != nil {
		return c, err
	}

	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			c.TP++
		case yTrue[i] == -1 && yPred[i] == 1:
			c.FP++
		case yTrue[i] == -1 && yPred[i] == -1:
			c.TN++
		default:
			c.FN++
		}
	}
	return c, nil
}

// Total returns the number of counted samples.
func (c BinaryConfusion) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// Accuracy returns (TP + TN) / Total, or 0 for an empty matrix.
func (c BinaryConfusion) Accuracy() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(c.Total())
}

// Precision returns TP / (TP + FP). With no positive predictions it warns
// and returns 0.
func (c BinaryConfusion) Precision() float64 {
	if c.TP+c.FP == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples", 0))
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

// Recall returns TP / (TP + FN). With no positive samples it warns and
// returns 0.
func (c BinaryConfusion) Recall() float64 {
	if c.TP+c.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples", 0))
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// F1 returns the harmonic mean of precision and recall.
func (c BinaryConfusion) F1() float64 {
	if 2*c.TP+c.FP+c.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1", "no true nor predicted samples", 0))
		return 0
	}
	return 2 * float64(c.TP) / float64(2*c.TP+c.FP+c.FN)
}

// AUC はROC曲線下の面積を計算する
//
// scores はどのような実数値でもよい（例: DecisionFunction の出力）。
// 同点のスコアは0.5として数える。片方のクラスしか存在しない場合は警告を出して0.5を返す。
func AUC(yTrue, scores []float64) (float64, error) {
	if err := checkPair("AUC", yTrue, scores); err != nil {
		return 0, err
	}
	if err := checkLabels("AUC", yTrue); err != nil {
		return 0, err
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	// 平均順位によるMann-Whitney U統計量
	var rankSumPos float64
	nPos, nNeg := 0, 0
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && scores[order[j]] == scores[order[i]] {
			j++
		}
		avgRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if yTrue[order[k]] == 1 {
				rankSumPos += avgRank
				nPos++
			} else {
				nNeg++
			}
		}
		i = j
	}

	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("auc", "only one class present in y_true", 0.5))
		return 0.5, nil
	}

	u := rankSumPos - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

func column(op string, m mat.Matrix) ([]float64, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	if cols != 1 {
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	out := make([]float64, rows)
	for i := range out {
		out[i] = m.At(i, 0)
	}
	return out, nil
}
