package ensemble

import (
	"github.com/YuminosukeSato/adaboost/pkg/log"
)

// RoundInfo describes one completed boosting round.
type RoundInfo struct {
	// Round is 1-based.
	Round     int
	ErrorRate float64
	Alpha     float64
	// Weights is a copy of the sample distribution after the round's update.
	Weights []float64
}

// RoundCallback is called after every boosting round. A non-nil error
// aborts training.
type RoundCallback func(info RoundInfo) error

// RecordHistory appends every round to history.
func RecordHistory(history *[]RoundInfo) RoundCallback {
	return func(info RoundInfo) error {
		*history = append(*history, info)
		return nil
	}
}

// LogEvaluation logs error rate and alpha every period rounds.
func LogEvaluation(logger log.Logger, period int) RoundCallback {
	if period <= 0 {
		period = 1
	}
	return func(info RoundInfo) error {
		if info.Round%period == 0 {
			logger.Info("Boosting progress",
				log.IterationKey, info.Round,
				log.ErrorRateKey, info.ErrorRate,
				log.AlphaKey, info.Alpha,
			)
		}
		return nil
	}
}
