package coordinator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/ngalaiko/spellcheck/checker"
	"github.com/ngalaiko/spellcheck/count"
	"github.com/ngalaiko/spellcheck/metrics"
	"github.com/ngalaiko/spellcheck/report"
	"github.com/ngalaiko/spellcheck/topk"
)

// ErrInvalidSubmission is returned by Submit for a request that cannot start.
var ErrInvalidSubmission = errors.New("invalid submission")

// Config tunes a Coordinator. Zero values fall back to defaults.
type Config struct {
	Checker checker.Options

	// SharedCapacity and SharedLockStripes size the shared table.
	SharedCapacity    int
	SharedLockStripes int

	// MaxConcurrent bounds how many tasks run at once; 0 means unbounded.
	// Waiting tasks still count as in flight.
	MaxConcurrent int

	// TrendSize is how many words Progress estimates.
	TrendSize int
}

// Snapshot is the final state of a drained Coordinator.
type Snapshot struct {
	FilesProcessed int
	Failed         int
	TotalErrors    int
	Top            []count.Element
}

// Summary converts s for a report sink.
func (s Snapshot) Summary() report.Summary {
	return report.Summary{
		FilesProcessed: s.FilesProcessed,
		TotalErrors:    s.TotalErrors,
		Top:            s.Top,
	}
}

// Progress can be read at any time, including while tasks run.
type Progress struct {
	InFlight  int
	Completed int
	Failed    int
	// Trending estimates the most common misspellings among finished tasks.
	Trending []topk.Element
}

// Coordinator runs spell-checking tasks concurrently, merging their misses
// into one shared table, and lets callers wait for all of them to finish.
type Coordinator struct {
	cfg     Config
	shared  *count.Table
	sink    report.Sink
	trend   *topk.Stream
	sem     *semaphore.Weighted
	metrics *metrics.Collector
	logger  *logrus.Entry

	// mu guards the counters below; idle is signalled when inFlight drops
	// to zero.
	mu        sync.Mutex
	idle      *sync.Cond
	inFlight  int
	completed int
	failed    int
}

// New returns a Coordinator reporting to sink. m and logger may be nil.
func New(cfg Config, sink report.Sink, m *metrics.Collector, logger *logrus.Entry) *Coordinator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if cfg.TrendSize <= 0 {
		cfg.TrendSize = 10
	}

	c := &Coordinator{
		cfg:     cfg,
		shared:  count.New(cfg.SharedCapacity, count.WithLockStripes(cfg.SharedLockStripes)),
		sink:    sink,
		trend:   topk.New(cfg.TrendSize),
		metrics: m,
		logger:  logger,
	}
	c.idle = sync.NewCond(&c.mu)
	if cfg.MaxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	return c
}

// Submit starts a task checking inputPath against dictionaryPath and returns
// its id without waiting for it. The task counts as in flight before Submit
// returns.
func (c *Coordinator) Submit(dictionaryPath, inputPath string) (string, error) {
	if dictionaryPath == "" || inputPath == "" {
		return "", errors.Wrap(ErrInvalidSubmission, "dictionary and input paths are required")
	}

	id := uuid.NewString()
	task := checker.NewTask(id, dictionaryPath, inputPath, c.shared, c.sink, c.cfg.Checker, c.logger)

	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	c.metrics.TasksSubmitted.Inc()
	c.metrics.TasksInFlight.Inc()

	go c.run(task)
	return id, nil
}

func (c *Coordinator) run(task *checker.Task) {
	if c.sem != nil {
		// Acquire only fails on a cancelled context.
		_ = c.sem.Acquire(context.Background(), 1)
		defer c.sem.Release(1)
	}

	result, err := task.Run()
	if err != nil {
		source := "unknown"
		var srcErr *checker.SourceError
		if errors.As(err, &srcErr) {
			source = srcErr.Kind.String()
		}
		c.logger.WithField("task", task.ID).Warnf("spell-checking task failed: %s", err)
		c.metrics.ObserveFailed(source)
	} else {
		for _, miss := range result.Misses {
			c.trend.Insert(miss.Key, miss.Count)
		}
		c.metrics.ObserveCompleted(result.Total, result.DictionaryWords, result.Duration)
	}
	c.finish(err == nil)
}

func (c *Coordinator) finish(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight--
	if ok {
		c.completed++
	} else {
		c.failed++
	}
	c.metrics.TasksInFlight.Dec()
	if c.inFlight == 0 {
		c.idle.Broadcast()
	}
}

// Drain blocks until no task is in flight. It may be called concurrently with
// Submit; it then returns at some moment when the count was zero.
func (c *Coordinator) Drain() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.inFlight > 0 {
		c.idle.Wait()
	}
}

// InFlight returns the number of tasks submitted but not finished.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inFlight
}

// Snapshot returns the final totals. Call it after Drain: tasks still running
// would make the table totals and the file count disagree.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	completed, failed := c.completed, c.failed
	c.mu.Unlock()

	return Snapshot{
		FilesProcessed: completed,
		Failed:         failed,
		TotalErrors:    c.shared.Total(),
		Top:            c.shared.TopK(report.Slots),
	}
}

// Progress returns the counters and trending misspellings so far.
func (c *Coordinator) Progress() Progress {
	c.mu.Lock()
	p := Progress{InFlight: c.inFlight, Completed: c.completed, Failed: c.failed}
	c.mu.Unlock()

	p.Trending = c.trend.Keys()
	return p
}

// Shared returns the table every task records its misses into.
func (c *Coordinator) Shared() *count.Table {
	return c.shared
}

// Summarize drains the coordinator and writes the summary to sink.
func (c *Coordinator) Summarize(sink report.Sink) (Snapshot, error) {
	c.Drain()
	snap := c.Snapshot()
	return snap, errors.Wrap(sink.WriteSummary(snap.Summary()), "write summary")
}
