package core

import (
	"time"

	"github.com/sirupsen/logrus"

	m "cryptostats/data/models"
	sm "cryptostats/models"
)

// ComputeMonthlyStatistics runs the engine over the store and, when asked to save, writes the
// result files and the postgres run. A failure at any step leaves no result files behind.
func (sc *ServiceContext) ComputeMonthlyStatistics(store m.TimeSeriesStore, req sm.StatisticsRequest) (*m.MonthlyStatistics, error) {
	started := time.Now()
	logger := sc.Logger.WithFields(logrus.Fields{
		"start":   req.Start,
		"end":     req.End,
		"symbols": len(store),
	})

	logger.Info("computing monthly statistics")
	res, err := GetMonthlyReturnsAndStatistics(store, req.Start, req.End, LogObserver{Logger: sc.Logger})
	if err != nil {
		logger.WithError(err).Error("monthly statistics failed")
		return nil, err
	}

	if req.Save {
		// files are only put in place once the postgres run is stored
		staged, err := sc.Sink.Stage(res)
		if err != nil {
			logger.WithError(err).Error("error writing statistics files")
			return nil, err
		}

		if sc.Repository != nil {
			runId, rows, err := sc.Repository.InsertMonthlyStatistics(sc.Context, res)
			if err != nil {
				staged.Discard()
				logger.WithError(err).Error("error storing statistics run")
				return nil, err
			}
			logger.WithFields(logrus.Fields{"run_id": runId, "rows": rows}).Info("statistics run stored")
		}

		if err := staged.Commit(); err != nil {
			logger.WithError(err).Error("error writing statistics files")
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"months":  len(res.Boundaries),
		"elapsed": time.Since(started),
	}).Info("monthly statistics computed")

	return res, nil
}
