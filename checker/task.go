package checker

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ngalaiko/spellcheck/count"
	"github.com/ngalaiko/spellcheck/dictionary"
	"github.com/ngalaiko/spellcheck/report"
	"github.com/ngalaiko/spellcheck/token"
)

// ErrSourceUnavailable is matched by every error about a dictionary or input
// that could not be opened or read.
var ErrSourceUnavailable = errors.New("source unavailable")

// SourceKind tells which of a task's two sources failed.
type SourceKind int

const (
	DictionarySource SourceKind = iota
	InputSource
)

func (k SourceKind) String() string {
	switch k {
	case DictionarySource:
		return "dictionary"
	case InputSource:
		return "input"
	}
	return "unknown"
}

// SourceError reports a source that could not be used.
type SourceError struct {
	Kind SourceKind
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s unavailable: %v", e.Kind, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// DictionaryPolicy decides what a task does when its dictionary cannot be
// loaded.
type DictionaryPolicy string

const (
	// PolicyAbort fails the task before the input is opened.
	PolicyAbort DictionaryPolicy = "abort"
	// PolicyEmpty carries on with whatever was loaded, possibly nothing, so
	// every word may count as misspelled.
	PolicyEmpty DictionaryPolicy = "empty"
)

// Options tune a Task. Zero values fall back to defaults.
type Options struct {
	MaxTokenLen      int
	DictionaryPolicy DictionaryPolicy
	TableCapacity    int
}

func (o Options) withDefaults() Options {
	if o.MaxTokenLen <= 0 {
		o.MaxTokenLen = token.DefaultMaxLen
	}
	if o.DictionaryPolicy == "" {
		o.DictionaryPolicy = PolicyAbort
	}
	if o.TableCapacity <= 0 {
		o.TableCapacity = count.DefaultCapacity
	}
	return o
}

// Result is what a finished Task leaves behind once its private state is
// released.
type Result struct {
	report.TaskResult

	// Misses holds every private tally, in table order.
	Misses []count.Element
	// DictionaryWords is the number of distinct words loaded.
	DictionaryWords int
	Duration        time.Duration
}

// Task checks one input against its own dictionary. It owns the dictionary
// and a private table; the shared table and sink are borrowed. A Task runs
// once.
type Task struct {
	ID         string
	Dictionary string
	Input      string

	shared *count.Table
	sink   report.Sink
	opts   Options
	logger *logrus.Entry

	truncatedLog *rate.Limiter
}

// NewTask returns a Task that records misses into shared and reports to sink.
func NewTask(id, dictionaryPath, inputPath string, shared *count.Table, sink report.Sink, opts Options, logger *logrus.Entry) *Task {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Task{
		ID:         id,
		Dictionary: dictionaryPath,
		Input:      inputPath,
		shared:     shared,
		sink:       sink,
		opts:       opts.withDefaults(),
		logger: logger.WithFields(logrus.Fields{
			"task":       id,
			"dictionary": dictionaryPath,
			"input":      inputPath,
		}),
		truncatedLog: rate.NewLimiter(1, 5),
	}
}

// Run loads the dictionary, checks every token of the input and reports the
// private tally. Errors are always *SourceError.
func (t *Task) Run() (*Result, error) {
	start := time.Now()

	dict := dictionary.New()
	defer dict.Destroy()

	if err := dict.LoadFile(t.Dictionary); err != nil {
		srcErr := &SourceError{Kind: DictionarySource, Path: t.Dictionary, Err: err}
		if t.opts.DictionaryPolicy == PolicyAbort {
			return nil, srcErr
		}
		t.logger.WithField("words", dict.Len()).Warnf("continuing with partial dictionary: %s", srcErr)
	}
	t.logger.WithField("words", dict.Len()).Debug("dictionary loaded")

	input, err := os.Open(t.Input)
	if err != nil {
		return nil, &SourceError{Kind: InputSource, Path: t.Input, Err: err}
	}
	defer input.Close()

	private := count.New(t.opts.TableCapacity)
	defer private.Destroy()

	scanner := token.NewScanner(input, t.opts.MaxTokenLen)
	for scanner.Scan() {
		word := scanner.Text()
		if scanner.Truncated() && t.truncatedLog.Allow() {
			t.logger.WithField("token", word).Debugf("[sampled] token truncated to %d bytes", t.opts.MaxTokenLen)
		}
		// A token without letters folds to the empty word and would be
		// judged by the root flag alone.
		if !dictionary.HasLetters(word) {
			continue
		}
		if dict.Contains(word) {
			continue
		}
		private.Record(word)
		t.shared.Record(word)
	}
	if err := scanner.Err(); err != nil {
		return nil, &SourceError{Kind: InputSource, Path: t.Input, Err: errors.Wrap(err, "read input")}
	}

	result := &Result{
		TaskResult: report.TaskResult{
			Source: t.Input,
			Total:  private.Total(),
			Top:    private.TopK(report.Slots),
		},
		DictionaryWords: dict.Len(),
	}
	private.Range(func(e count.Element) bool {
		result.Misses = append(result.Misses, e)
		return true
	})

	if err := t.sink.WriteTask(result.TaskResult); err != nil {
		t.logger.Errorf("failed to write task report: %q", err)
	}
	result.Duration = time.Since(start)

	t.logger.WithField("misspellings", result.Total).Info("spell-checking task finished")
	return result, nil
}
