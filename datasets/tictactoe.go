// Package datasets loads the tic-tac-toe endgame data set into encoded
// feature matrices with ±1 labels.
//
// Each record is a final board position, nine squares read row by row
// ("x", "o" or "b" for blank), followed by the class: "positive" when x
// has won, "negative" otherwise.
package datasets

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/YuminosukeSato/adaboost/preprocessing"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"
)

// DefaultPositiveClass is the class label of a win for x.
const DefaultPositiveClass = "positive"

// SquareNames lists the board squares in file order.
var SquareNames = []string{
	"top_left", "top_middle", "top_right",
	"middle_left", "middle_middle", "middle_right",
	"bottom_left", "bottom_middle", "bottom_right",
}

// BoardRecord is one row of the data set.
type BoardRecord struct {
	TopLeft      string `csv:"top_left"`
	TopMiddle    string `csv:"top_middle"`
	TopRight     string `csv:"top_right"`
	MiddleLeft   string `csv:"middle_left"`
	MiddleMiddle string `csv:"middle_middle"`
	MiddleRight  string `csv:"middle_right"`
	BottomLeft   string `csv:"bottom_left"`
	BottomMiddle string `csv:"bottom_middle"`
	BottomRight  string `csv:"bottom_right"`
	Class        string `csv:"class"`
}

// Squares returns the nine squares in file order.
func (r *BoardRecord) Squares() []string {
	return []string{
		r.TopLeft, r.TopMiddle, r.TopRight,
		r.MiddleLeft, r.MiddleMiddle, r.MiddleRight,
		r.BottomLeft, r.BottomMiddle, r.BottomRight,
	}
}

// Dataset is an encoded feature matrix with ±1 labels.
type Dataset struct {
	X            *mat.Dense
	Y            []float64
	FeatureNames []string
	// Labels holds the raw class strings, one per row.
	Labels []string
}

// NSamples returns the number of rows.
func (d *Dataset) NSamples() int {
	return len(d.Y)
}

// NFeatures returns the number of encoded columns.
func (d *Dataset) NFeatures() int {
	_, c := d.X.Dims()
	return c
}

// Subset returns a copy of the rows at idx, in idx order.
func (d *Dataset) Subset(idx []int) (*Dataset, error) {
	if len(idx) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Dataset.Subset")
	}
	n, c := d.X.Dims()
	sub := &Dataset{
		X:            mat.NewDense(len(idx), c, nil),
		Y:            make([]float64, len(idx)),
		FeatureNames: d.FeatureNames,
	}
	if d.Labels != nil {
		sub.Labels = make([]string, len(idx))
	}
	for i, row := range idx {
		if row < 0 || row >= n {
			return nil, errors.NewValidationError("idx", "row index out of range", row)
		}
		sub.X.SetRow(i, d.X.RawRowView(row))
		sub.Y[i] = d.Y[row]
		if d.Labels != nil {
			sub.Labels[i] = d.Labels[row]
		}
	}
	return sub, nil
}

// ReadBoardRecords parses records from r. When header is false the input
// is the headerless UCI format and columns are taken in file order.
func ReadBoardRecords(r io.Reader, header bool) ([]*BoardRecord, error) {
	if !header {
		names := append(append([]string(nil), SquareNames...), "class")
		r = io.MultiReader(strings.NewReader(strings.Join(names, ",")+"\n"), r)
	}

	var records []*BoardRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, errors.Wrap(err, "failed to parse tic-tac-toe records")
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "ReadBoardRecords")
	}

	for i, rec := range records {
		for j, sq := range rec.Squares() {
			switch sq {
			case "x", "o", "b":
			default:
				return nil, errors.NewValidationError(SquareNames[j], fmt.Sprintf("record %d: square must be x, o or b", i+1), sq)
			}
		}
		if rec.Class == "" {
			return nil, errors.NewValidationError("class", fmt.Sprintf("record %d: missing class", i+1), rec.Class)
		}
	}
	return records, nil
}

// FromRecords one-hot encodes the board squares and binarizes the class,
// mapping positive to +1.
func FromRecords(records []*BoardRecord, positive string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "FromRecords")
	}

	boards := make([][]string, len(records))
	labels := make([]string, len(records))
	for i, rec := range records {
		boards[i] = rec.Squares()
		labels[i] = rec.Class
	}

	enc := preprocessing.NewOneHotEncoder(preprocessing.WithColumnNames(SquareNames))
	X, err := enc.FitTransform(boards)
	if err != nil {
		return nil, err
	}
	y, err := preprocessing.NewLabelBinarizer(positive).FitTransform(labels)
	if err != nil {
		return nil, err
	}

	return &Dataset{X: X, Y: y, FeatureNames: enc.FeatureNames(), Labels: labels}, nil
}

// LoadTicTacToe reads and encodes the data set from r.
func LoadTicTacToe(r io.Reader, header bool, positive string) (*Dataset, error) {
	records, err := ReadBoardRecords(r, header)
	if err != nil {
		return nil, err
	}
	return FromRecords(records, positive)
}

// LoadTicTacToeFile reads and encodes the data set stored at path.
func LoadTicTacToeFile(path string, header bool, positive string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open data set")
	}
	defer f.Close()
	return LoadTicTacToe(f, header, positive)
}
