// Package model_selection provides k-fold splitting and cross validation of
// binary classifiers.
package model_selection

import (
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/adaboost/pkg/errors"
)

// Splitter produces train/test folds for n = len(y) samples.
type Splitter interface {
	Split(y []float64) ([]Fold, error)
	GetNSplits() int
}

// Fold represents a single fold in cross-validation
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter
//
// Test folds are contiguous slices of the (optionally shuffled) index
// order. When n is not a multiple of NSplits the first n % NSplits folds
// get one extra sample.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) *KFold {
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split generates train/test indices for each fold
func (kf *KFold) Split(y []float64) ([]Fold, error) {
	nSamples := len(y)
	if err := checkSplits(kf.NSplits, nSamples); err != nil {
		return nil, err
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		shuffle(indices, kf.RandomSeed)
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	currentIdx := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		test := append([]int(nil), indices[currentIdx:currentIdx+testSize]...)
		folds[i] = Fold{TrainIndices: complement(nSamples, test), TestIndices: test}
		currentIdx += testSize
	}
	return folds, nil
}

// StratifiedKFold implements stratified k-fold cross-validation
//
// Each class is dealt across the folds separately so that every test fold
// keeps roughly the class balance of y.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewStratifiedKFold creates a new stratified k-fold splitter
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed uint64) *StratifiedKFold {
	return &StratifiedKFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split generates stratified train/test indices for each fold
func (skf *StratifiedKFold) Split(y []float64) ([]Fold, error) {
	nSamples := len(y)
	if err := checkSplits(skf.NSplits, nSamples); err != nil {
		return nil, err
	}

	// Group indices by class, classes in ascending order for determinism
	classIndices := make(map[float64][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}
	labels := make([]float64, 0, len(classIndices))
	for label := range classIndices {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	tests := make([][]int, skf.NSplits)
	offset := 0
	for _, label := range labels {
		indices := classIndices[label]
		if skf.Shuffle {
			shuffle(indices, skf.RandomSeed)
		}
		// Continue dealing where the previous class stopped so that the
		// remainders of different classes land in different folds.
		for _, idx := range indices {
			tests[offset%skf.NSplits] = append(tests[offset%skf.NSplits], idx)
			offset++
		}
	}

	folds := make([]Fold, skf.NSplits)
	for i, test := range tests {
		sort.Ints(test)
		folds[i] = Fold{TrainIndices: complement(nSamples, test), TestIndices: test}
	}
	return folds, nil
}

func checkSplits(nSplits, nSamples int) error {
	if nSplits < 2 {
		return errors.NewValidationError("n_splits", "must be at least 2", nSplits)
	}
	if nSplits > nSamples {
		return errors.NewValidationError("n_splits", "cannot exceed the number of samples", nSplits)
	}
	return nil
}

func shuffle(indices []int, seed uint64) {
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
}

// complement returns the indices in [0, n) not in test, ascending.
func complement(n int, test []int) []int {
	inTest := make([]bool, n)
	for _, idx := range test {
		inTest[idx] = true
	}
	train := make([]int, 0, n-len(test))
	for i := 0; i < n; i++ {
		if !inTest[i] {
			train = append(train, i)
		}
	}
	return train
}
