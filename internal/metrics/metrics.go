// Package metrics exposes ledger and merge activity as Prometheus collectors.
//
// Each Metrics value owns its own registry so that tests and separate ledger
// instances never share counters. The CLI writes the registry out in the
// node_exporter textfile format after a command finishes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hashfold"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	filesRecorded  prometheus.Counter
	filesUnchanged prometheus.Counter
	filesLocked    prometheus.Counter
	bytesHashed    prometheus.Counter
	hashSeconds    prometheus.Histogram
	perfObserved   *prometheus.CounterVec
	mergeOutcomes  *prometheus.CounterVec
}

// New creates a Metrics with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		filesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_recorded_total",
			Help:      "File events appended to the ledger.",
		}),
		filesUnchanged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_unchanged_total",
			Help:      "Files skipped because size and mtime matched the current event.",
		}),
		filesLocked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_locked_total",
			Help:      "Files skipped because they were locked.",
		}),
		bytesHashed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashed_bytes_total",
			Help:      "Bytes read while computing content hashes.",
		}),
		hashSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "big_file_hash_seconds",
			Help:      "Time spent hashing files at or above the big file threshold.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		perfObserved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashperf_observations_total",
			Help:      "Big file hash timings offered to the performance table.",
		}, []string{"admitted"}),
		mergeOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_outcomes_total",
			Help:      "Merge classifications by outcome.",
		}, []string{"outcome"}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Recorded counts a newly appended event of the given size.
func (m *Metrics) Recorded(size int64) {
	if m == nil {
		return
	}
	m.filesRecorded.Inc()
	m.bytesHashed.Add(float64(size))
}

// Unchanged counts a file that needed no new event.
func (m *Metrics) Unchanged() {
	if m == nil {
		return
	}
	m.filesUnchanged.Inc()
}

// Locked counts a file skipped because it was locked.
func (m *Metrics) Locked() {
	if m == nil {
		return
	}
	m.filesLocked.Inc()
}

// BigFileHashed records a big file's hash time and whether the performance
// table admitted it.
func (m *Metrics) BigFileHashed(elapsed time.Duration, admitted bool) {
	if m == nil {
		return
	}
	m.hashSeconds.Observe(elapsed.Seconds())
	label := "false"
	if admitted {
		label = "true"
	}
	m.perfObserved.WithLabelValues(label).Inc()
}

// Outcome counts one merge classification.
func (m *Metrics) Outcome(name string) {
	if m == nil {
		return
	}
	m.mergeOutcomes.WithLabelValues(name).Inc()
}

// WriteTextfile writes every collector to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
