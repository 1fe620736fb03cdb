// Package metrics keeps process and business gauges in an embedded
// time-series store under the configured workdir.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

var (
	mu      sync.Mutex
	storage tstorage.Storage
)

// InitMetrics opens the embedded time-series storage below workdir.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		return nil
	}
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records a single sample for the named metric at the current time.
func SetGauge(name string, value int64) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return
	}
	err := s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
		},
	})
	if err != nil {
		zap.L().Warn("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// Incr records a counter-style sample of 1 for the named metric.
func Incr(name string) {
	SetGauge(name, 1)
}

// Range returns the datapoints for a metric between start and end (unix seconds).
func Range(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(name, nil, start, end)
	if err != nil {
		if err == tstorage.ErrNoDataPoints {
			return nil, nil
		}
		return nil, err
	}
	return points, nil
}

// Close flushes and closes the underlying storage.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
