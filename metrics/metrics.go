package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the spell-checking task metrics.
type Collector struct {
	TasksSubmitted  prometheus.Counter
	TasksCompleted  prometheus.Counter
	TasksFailed     *prometheus.CounterVec
	TasksInFlight   prometheus.Gauge
	Misspellings    prometheus.Counter
	TaskDuration    prometheus.Histogram
	DictionaryWords prometheus.Histogram
}

// New registers the metrics on reg. A nil reg creates a private registry, so
// several collectors can live in one process (tests, multiple coordinators).
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Collector{
		TasksSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "spellcheck_tasks_submitted_total",
			Help: "Spell-checking tasks accepted by the coordinator",
		}),
		TasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "spellcheck_tasks_completed_total",
			Help: "Spell-checking tasks that processed their whole input",
		}),
		TasksFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spellcheck_tasks_failed_total",
			Help: "Spell-checking tasks that ended with an error, by failed source",
		}, []string{"source"}),
		TasksInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "spellcheck_tasks_in_flight",
			Help: "Spell-checking tasks submitted but not finished",
		}),
		Misspellings: factory.NewCounter(prometheus.CounterOpts{
			Name: "spellcheck_misspellings_total",
			Help: "Misspelled word occurrences found by completed tasks",
		}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "spellcheck_task_duration_seconds",
			Help:    "Time from task start to report",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		DictionaryWords: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "spellcheck_dictionary_words",
			Help:    "Distinct words loaded per task dictionary",
			Buckets: prometheus.ExponentialBuckets(10, 10, 6),
		}),
	}
}

// ObserveCompleted records a finished task.
func (c *Collector) ObserveCompleted(misspellings, dictionaryWords int, took time.Duration) {
	c.TasksCompleted.Inc()
	c.Misspellings.Add(float64(misspellings))
	c.TaskDuration.Observe(took.Seconds())
	c.DictionaryWords.Observe(float64(dictionaryWords))
}

// ObserveFailed records a task that ended with an error from source.
func (c *Collector) ObserveFailed(source string) {
	c.TasksFailed.WithLabelValues(source).Inc()
}
