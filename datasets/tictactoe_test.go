package datasets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const uciSample = `x,x,x,x,o,o,x,o,o,positive
x,x,x,x,o,o,o,x,o,positive
o,x,x,b,o,x,x,o,o,negative
o,o,x,x,x,o,o,x,x,negative
b,b,x,o,o,o,x,x,b,negative
`

func TestLoadTicTacToeHeaderless(t *testing.T) {
	ds, err := LoadTicTacToe(strings.NewReader(uciSample), false, DefaultPositiveClass)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.NSamples())
	assert.Equal(t, []float64{1, 1, -1, -1, -1}, ds.Y)
	assert.Equal(t, []string{"positive", "positive", "negative", "negative", "negative"}, ds.Labels)
	assert.Equal(t, len(ds.FeatureNames), ds.NFeatures())
	assert.Contains(t, ds.FeatureNames, "top_left=x")
	assert.Contains(t, ds.FeatureNames, "middle_middle=o")

	// One active indicator per square.
	for i := 0; i < ds.NSamples(); i++ {
		assert.Equal(t, 9.0, mat.Sum(ds.X.RowView(i)), "row %d", i)
	}
}

func TestLoadTicTacToeWithHeader(t *testing.T) {
	input := strings.Join(append(append([]string(nil), SquareNames...), "class"), ",") + "\n" + uciSample

	ds, err := LoadTicTacToe(strings.NewReader(input), true, "negative")
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -1, 1, 1, 1}, ds.Y)
}

func TestReadBoardRecordsValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "bad square", input: "x,x,q,x,o,o,x,o,o,positive\n"},
		{name: "missing class", input: "x,x,x,x,o,o,x,o,o,\n"},
		{name: "empty", input: ""},
		{name: "short row", input: "x,x,x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBoardRecords(strings.NewReader(tt.input), false)
			assert.Error(t, err)
		})
	}
}

func TestLoadTicTacToeMissingPositiveClass(t *testing.T) {
	_, err := LoadTicTacToe(strings.NewReader(uciSample), false, "win")
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr), "got %v", err)
}

func TestLoadTicTacToeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tic-tac-toe.data")
	require.NoError(t, os.WriteFile(path, []byte(uciSample), 0o600))

	ds, err := LoadTicTacToeFile(path, false, DefaultPositiveClass)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.NSamples())

	_, err = LoadTicTacToeFile(filepath.Join(t.TempDir(), "missing.data"), false, DefaultPositiveClass)
	assert.Error(t, err)
}

func TestSubset(t *testing.T) {
	ds, err := LoadTicTacToe(strings.NewReader(uciSample), false, DefaultPositiveClass)
	require.NoError(t, err)

	sub, err := ds.Subset([]int{4, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.NSamples())
	assert.Equal(t, []float64{-1, 1}, sub.Y)
	assert.Equal(t, []string{"negative", "positive"}, sub.Labels)
	assert.Equal(t, ds.X.RawRowView(4), sub.X.RawRowView(0))
	assert.Equal(t, ds.X.RawRowView(0), sub.X.RawRowView(1))

	// The subset owns its storage.
	sub.X.Set(0, 0, 42)
	assert.NotEqual(t, 42.0, ds.X.At(4, 0))

	_, err = ds.Subset([]int{7})
	assert.Error(t, err)
	_, err = ds.Subset(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
