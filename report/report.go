package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/ngalaiko/spellcheck/count"
)

// Slots is the number of top words shown per line and in the summary.
const Slots = 3

// TaskResult is what a finished spell-checking task reports about its input.
type TaskResult struct {
	Source string
	Total  int
	Top    []count.Element
}

// Summary is the final report across every finished task.
type Summary struct {
	FilesProcessed int
	TotalErrors    int
	Top            []count.Element
}

// Sink is an append-only destination for reports. Implementations serialize
// writes so lines from concurrent tasks never interleave.
type Sink interface {
	WriteTask(TaskResult) error
	WriteSummary(Summary) error
}

func slots(top []count.Element) []count.Element {
	out := make([]count.Element, Slots)
	copy(out, top)
	return out
}

// FormatTask renders r as `<source> <total> <w1> <w2> <w3>`. Empty slots are
// empty strings.
func FormatTask(r TaskResult) string {
	top := slots(r.Top)
	words := make([]string, len(top))
	for i, e := range top {
		words[i] = e.Key
	}
	return fmt.Sprintf("%s %d %s\n", r.Source, r.Total, strings.Join(words, " "))
}

// FormatSummary renders s as a free-text block.
func FormatSummary(s Summary) string {
	top := slots(s.Top)
	common := make([]string, len(top))
	for i, e := range top {
		common[i] = fmt.Sprintf("%s (%d times)", e.Key, e.Count)
	}
	return fmt.Sprintf(
		"Number of files processed: %d\nNumber of spelling errors: %d\nThree most common misspellings: %s\n",
		s.FilesProcessed, s.TotalErrors, strings.Join(common, ", "),
	)
}

// WriterSink appends reports to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := io.WriteString(s.w, text)
	return errors.Wrap(err, "write report")
}

func (s *WriterSink) WriteTask(r TaskResult) error {
	return s.write(FormatTask(r))
}

func (s *WriterSink) WriteSummary(sum Summary) error {
	return s.write(FormatSummary(sum))
}

// FileSink appends reports to a file, opening it for each write so the file
// can be inspected or rotated between tasks.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the file reports are appended to.
func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "open report file %s", s.path)
	}
	if _, err := file.WriteString(text); err != nil {
		file.Close()
		return errors.Wrapf(err, "write report file %s", s.path)
	}
	return errors.Wrapf(file.Close(), "close report file %s", s.path)
}

func (s *FileSink) WriteTask(r TaskResult) error {
	return s.write(FormatTask(r))
}

func (s *FileSink) WriteSummary(sum Summary) error {
	return s.write(FormatSummary(sum))
}
