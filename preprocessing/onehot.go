// Package preprocessing turns categorical records into the numeric matrices
// and ±1 label vectors consumed by the boosting classifiers.
package preprocessing

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// HandleUnknownError makes Transform fail on categories not seen by Fit.
	HandleUnknownError = "error"
	// HandleUnknownIgnore encodes unseen categories as all-zero indicators.
	HandleUnknownIgnore = "ignore"
)

// OneHotEncoder はカテゴリ変数の各列を0/1の指示変数列に展開する
//
// 列jのカテゴリはソート順に並び、出力列の名前は "<列名>=<値>" になる。
type OneHotEncoder struct {
	state *model.StateManager

	// HandleUnknown は未知カテゴリの扱い ("error" または "ignore")
	HandleUnknown string

	// ColumnNames は入力列の名前（省略時は x0, x1, ...）
	ColumnNames []string

	// Categories は各入力列の学習済みカテゴリ（ソート済み）
	Categories [][]string

	index   []map[string]int
	offsets []int
	width   int
}

// OneHotOption is a functional option for OneHotEncoder.
type OneHotOption func(*OneHotEncoder)

// WithHandleUnknown sets how Transform treats unseen categories.
func WithHandleUnknown(mode string) OneHotOption {
	return func(e *OneHotEncoder) {
		e.HandleUnknown = mode
	}
}

// WithColumnNames names the input columns for FeatureNames.
func WithColumnNames(names []string) OneHotOption {
	return func(e *OneHotEncoder) {
		e.ColumnNames = append([]string(nil), names...)
	}
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewOneHotEncoder(preprocessing.WithHandleUnknown("ignore"))
//	X, err := enc.FitTransform(records)
func NewOneHotEncoder(opts ...OneHotOption) *OneHotEncoder {
	e := &OneHotEncoder{
		state:         model.NewStateManager(),
		HandleUnknown: HandleUnknownError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fit は各列のカテゴリ語彙を学習する
func (e *OneHotEncoder) Fit(rows [][]string) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Fit")
	}
	if e.HandleUnknown != HandleUnknownError && e.HandleUnknown != HandleUnknownIgnore {
		return errors.NewValidationError("handle_unknown", "must be \"error\" or \"ignore\"", e.HandleUnknown)
	}
	nCols := len(rows[0])
	if e.ColumnNames != nil && len(e.ColumnNames) != nCols {
		return errors.NewDimensionError("OneHotEncoder.Fit", len(e.ColumnNames), nCols, 1)
	}

	seen := make([]map[string]struct{}, nCols)
	for j := range seen {
		seen[j] = make(map[string]struct{})
	}
	for i, row := range rows {
		if len(row) != nCols {
			return errors.NewValidationError("rows", fmt.Sprintf("row %d has %d columns", i, len(row)), nCols)
		}
		for j, v := range row {
			seen[j][v] = struct{}{}
		}
	}

	e.Categories = make([][]string, nCols)
	e.index = make([]map[string]int, nCols)
	e.offsets = make([]int, nCols)
	e.width = 0
	for j := range seen {
		cats := make([]string, 0, len(seen[j]))
		for v := range seen[j] {
			cats = append(cats, v)
		}
		sort.Strings(cats)

		e.Categories[j] = cats
		e.index[j] = make(map[string]int, len(cats))
		for k, v := range cats {
			e.index[j][v] = k
		}
		e.offsets[j] = e.width
		e.width += len(cats)
	}

	e.state.SetFitted(nCols, len(rows))
	return nil
}

// Transform はレコードを指示変数行列 (n × NOutputs) に変換する
func (e *OneHotEncoder) Transform(rows [][]string) (*mat.Dense, error) {
	if err := e.state.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Transform")
	}

	out := mat.NewDense(len(rows), e.width, nil)
	for i, row := range rows {
		if err := e.state.RequireFeatures("OneHotEncoder.Transform", len(row)); err != nil {
			return nil, err
		}
		for j, v := range row {
			k, ok := e.index[j][v]
			if !ok {
				if e.HandleUnknown == HandleUnknownIgnore {
					continue
				}
				return nil, errors.NewValidationError(e.columnName(j), "unknown category", v)
			}
			out.Set(i, e.offsets[j]+k, 1)
		}
	}
	return out, nil
}

// FitTransform は Fit と Transform を続けて実行する
func (e *OneHotEncoder) FitTransform(rows [][]string) (*mat.Dense, error) {
	if err := e.Fit(rows); err != nil {
		return nil, err
	}
	return e.Transform(rows)
}

// NOutputs returns the number of indicator columns produced by Transform.
func (e *OneHotEncoder) NOutputs() int {
	return e.width
}

// FeatureNames returns "<column>=<category>" for every output column.
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, e.width)
	for j, cats := range e.Categories {
		for _, v := range cats {
			names = append(names, e.columnName(j)+"="+v)
		}
	}
	return names
}

func (e *OneHotEncoder) columnName(j int) string {
	if j < len(e.ColumnNames) {
		return e.ColumnNames[j]
	}
	return fmt.Sprintf("x%d", j)
}
