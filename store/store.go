// Package store persists cross-validation reports and trained ensembles in
// a BadgerDB key-value store.
//
// Values are JSON documents. Reports live under "report/<id>" and models
// under "model/<id>".
package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/YuminosukeSato/adaboost/core/model"
	"github.com/YuminosukeSato/adaboost/ensemble"
	"github.com/YuminosukeSato/adaboost/model_selection"
	"github.com/YuminosukeSato/adaboost/pkg/errors"
	"github.com/YuminosukeSato/adaboost/pkg/log"
	"github.com/dgraph-io/badger/v4"
)

const (
	reportPrefix = "report/"
	modelPrefix  = "model/"
)

// ErrNotFound is returned when a report or model id does not exist.
var ErrNotFound = errors.New("not found")

// SizeResult is the cross-validation outcome for one ensemble size.
type SizeResult struct {
	NEstimators int       `json:"n_estimators"`
	FoldScores  []float64 `json:"fold_scores"`
	Mean        float64   `json:"mean"`
	Std         float64   `json:"std"`
}

// Report describes one evaluation run.
type Report struct {
	ID        string       `json:"id"`
	Dataset   string       `json:"dataset"`
	Positive  string       `json:"positive"`
	Folds     int          `json:"folds"`
	Seed      uint64       `json:"seed"`
	Samples   int          `json:"samples"`
	Features  int          `json:"features"`
	CreatedAt time.Time    `json:"created_at"`
	Sizes     []SizeResult `json:"sizes"`
}

// Best returns the size with the highest mean accuracy; the smaller size
// wins ties. ok is false for an empty report.
func (r *Report) Best() (best SizeResult, ok bool) {
	for i, s := range r.Sizes {
		if i == 0 || s.Mean > best.Mean {
			best = s
		}
	}
	return best, len(r.Sizes) > 0
}

// AddSweep appends the results of an estimator sweep.
func (r *Report) AddSweep(points []model_selection.SweepPoint) {
	for _, p := range points {
		r.Sizes = append(r.Sizes, SizeResult{
			NEstimators: p.NEstimators,
			FoldScores:  append([]float64(nil), p.Result.FoldScores...),
			Mean:        p.Result.Mean,
			Std:         p.Result.Std,
		})
	}
}

// RunStore wraps BadgerDB for persistent storage
type RunStore struct {
	db *badger.DB
}

// Open opens (or creates) a store in dir.
func Open(dir string) (*RunStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{log.GetLoggerWithName("store")}
	return open(opts)
}

// OpenInMemory opens a store that keeps everything in memory.
func OpenInMemory() (*RunStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = badgerLogger{log.GetLoggerWithName("store")}
	return open(opts)
}

func open(opts badger.Options) (*RunStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open run store")
	}
	return &RunStore{db: db}, nil
}

// Close closes the database
func (s *RunStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveReport stores r under its ID, replacing any previous report.
func (s *RunStore) SaveReport(r *Report) error {
	if r.ID == "" {
		return errors.NewValidationError("id", "report id is required", r.ID)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return s.put(reportPrefix+r.ID, data)
}

// LoadReport returns the report stored under id.
func (s *RunStore) LoadReport(id string) (*Report, error) {
	var r Report
	if err := s.get(reportPrefix+id, func(val []byte) error { return json.Unmarshal(val, &r) }); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReports returns every stored report ordered by id.
func (s *RunStore) ListReports() ([]*Report, error) {
	var reports []*Report
	err := s.scan(reportPrefix, func(_ string, val []byte) error {
		var r Report
		if err := json.Unmarshal(val, &r); err != nil {
			return err
		}
		reports = append(reports, &r)
		return nil
	})
	return reports, err
}

// DeleteReport removes the report stored under id.
func (s *RunStore) DeleteReport(id string) error {
	return s.delete(reportPrefix + id)
}

// SaveModel stores the exported weights of clf under id.
func (s *RunStore) SaveModel(id string, clf *ensemble.AdaBoostClassifier) error {
	if id == "" {
		return errors.NewValidationError("id", "model id is required", id)
	}
	w, err := clf.ExportWeights()
	if err != nil {
		return err
	}
	data, err := w.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return s.put(modelPrefix+id, data)
}

// LoadModel rebuilds the ensemble stored under id. opts configure the
// returned classifier (logger, parallelism); the learned state comes from
// the store.
func (s *RunStore) LoadModel(id string, opts ...ensemble.Option) (*ensemble.AdaBoostClassifier, error) {
	var w model.EnsembleWeights
	if err := s.get(modelPrefix+id, w.FromJSON); err != nil {
		return nil, err
	}
	clf := ensemble.NewAdaBoostClassifier(opts...)
	if err := clf.ImportWeights(&w); err != nil {
		return nil, err
	}
	return clf, nil
}

// ListModels returns the ids of every stored model.
func (s *RunStore) ListModels() ([]string, error) {
	var ids []string
	err := s.scan(modelPrefix, func(key string, _ []byte) error {
		ids = append(ids, strings.TrimPrefix(key, modelPrefix))
		return nil
	})
	return ids, err
}

func (s *RunStore) put(key string, val []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	return errors.Wrapf(err, "failed to write %s", key)
}

func (s *RunStore) get(key string, decode func(val []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(decode)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.Wrapf(ErrNotFound, "%s", key)
	}
	return errors.Wrapf(err, "failed to read %s", key)
}

func (s *RunStore) delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.Wrapf(ErrNotFound, "%s", key)
	}
	return errors.Wrapf(err, "failed to delete %s", key)
}

func (s *RunStore) scan(prefix string, fn func(key string, val []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if err := item.Value(func(val []byte) error { return fn(key, val) }); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrapf(err, "failed to scan %s", prefix)
}

// badgerLogger routes badger's internal logging into the component logger.
// Badger's info output is chatty, so it is demoted to debug.
type badgerLogger struct {
	log.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.Logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.Logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
