package ledger

import (
	"log/slog"
	"time"

	"github.com/roach88/hashfold/internal/hasher"
	"github.com/roach88/hashfold/internal/hashperf"
	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/metrics"
	"github.com/roach88/hashfold/internal/probe"
	"github.com/roach88/hashfold/internal/walker"
)

// DefaultBigFileThreshold is the size at which hash timings are tracked.
const DefaultBigFileThreshold int64 = 100 << 20

// ModTimeTolerance absorbs filesystem timestamp rounding when deciding
// whether a file changed.
const ModTimeTolerance = time.Second

// Options configures a Ledger.
type Options struct {
	Hasher           hasher.Hasher
	Probe            probe.Probe
	Enumerator       walker.Enumerator
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	BigFileThreshold int64
	MaxPerfEntries   int
	Now              func() time.Time

	// OnRecord, if set, is called after every Record during a Scan.
	OnRecord func(root ir.RootID, rel string, status RecordStatus)
}

// Option is a functional option for configuring Open.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Hasher:           hasher.NewSHA512(),
		Probe:            probe.New(),
		Enumerator:       walker.New(),
		Logger:           slog.Default(),
		BigFileThreshold: DefaultBigFileThreshold,
		MaxPerfEntries:   hashperf.DefaultCapacity,
		Now:              time.Now,
	}
}

// WithHasher sets the content hasher.
func WithHasher(h hasher.Hasher) Option {
	return func(o *Options) { o.Hasher = h }
}

// WithProbe sets the attribute and lock probe.
func WithProbe(p probe.Probe) Option {
	return func(o *Options) { o.Probe = p }
}

// WithEnumerator sets the path enumerator used by Scan.
func WithEnumerator(e walker.Enumerator) Option {
	return func(o *Options) { o.Enumerator = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithBigFileThreshold sets the size at which hash timings are tracked.
func WithBigFileThreshold(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.BigFileThreshold = n
		}
	}
}

// WithMaxPerfEntries sets the capacity of the hash performance table.
func WithMaxPerfEntries(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxPerfEntries = n
		}
	}
}

// WithNow sets the wall clock used for the update time.
func WithNow(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithOnRecord sets a callback run after every Record during a Scan.
func WithOnRecord(fn func(root ir.RootID, rel string, status RecordStatus)) Option {
	return func(o *Options) { o.OnRecord = fn }
}
