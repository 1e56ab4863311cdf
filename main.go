package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ngalaiko/spellcheck/config"
	"github.com/ngalaiko/spellcheck/coordinator"
	"github.com/ngalaiko/spellcheck/logging"
	"github.com/ngalaiko/spellcheck/metrics"
	"github.com/ngalaiko/spellcheck/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logSummary bool
		logLevel   string
		logFile    string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:          "spellcheck",
		Short:        "Check text files against dictionaries concurrently",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			if configPath != "" {
				loaded, err := config.LoadFromFile(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			flags := cmd.Flags()
			if flags.Changed("log-summary") {
				cfg.Report.SummaryToSink = logSummary
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("log-file") {
				cfg.Log.File = logFile
			}
			if flags.Changed("report") {
				cfg.Report.Path = reportPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			closer, err := logging.Init(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return err
			}
			defer closer.Close()

			return run(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.BoolVarP(&logSummary, "log-summary", "l", false, "append the final summary to the report file instead of printing it")
	flags.StringVar(&logLevel, "log-level", "info", "logging level: error, warn, info, debug or trace")
	flags.StringVar(&logFile, "log-file", "", "if set, log to a file instead of stderr")
	flags.StringVar(&reportPath, "report", "", "path of the append-only report file")
	return cmd
}

func run(cfg *config.Config, in io.Reader, out io.Writer) error {
	registry := prometheus.NewRegistry()
	sink := report.NewFileSink(cfg.Report.Path)
	coord := coordinator.New(cfg.CoordinatorOptions(), sink, metrics.New(registry), nil)

	s := &session{
		in:    bufio.NewScanner(in),
		out:   out,
		coord: coord,
	}
	s.in.Split(bufio.ScanWords)
	s.loop()

	if n := coord.InFlight(); n > 0 {
		fmt.Fprintf(out, "Waiting for %d running tasks to finish...\n", n)
	}
	coord.Drain()
	fmt.Fprintln(out, "All tasks have finished running.")

	var summarySink report.Sink = report.NewWriterSink(out)
	if cfg.Report.SummaryToSink {
		summarySink = sink
	}
	snap, err := coord.Summarize(summarySink)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"files":  snap.FilesProcessed,
		"failed": snap.Failed,
		"errors": snap.TotalErrors,
	}).Info("spell-checking session finished")
	logMetrics(registry)
	return nil
}

type session struct {
	in    *bufio.Scanner
	out   io.Writer
	coord *coordinator.Coordinator
}

// next returns the next word typed by the user; ok is false on end of input.
func (s *session) next(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *session) loop() {
	for {
		choice, ok := s.next("\nMain Menu\n1. Start a new spellchecking task\n2. Show progress\n3. Exit\nEnter your choice: ")
		if !ok {
			fmt.Fprintln(s.out)
			return
		}
		switch choice {
		case "1":
			if !s.submit() {
				return
			}
		case "2":
			s.progress()
		case "3":
			return
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
		}
	}
}

// submit asks for a dictionary and an input and starts a task. It returns
// false once the input is exhausted.
func (s *session) submit() bool {
	dict, ok := s.next("\nEnter dictionary file name (or type 'back' to return): ")
	if !ok {
		return false
	}
	if dict == "back" {
		return true
	}
	input, ok := s.next("Enter input text file name (or type 'back' to return): ")
	if !ok {
		return false
	}
	if input == "back" {
		return true
	}

	if _, err := s.coord.Submit(dict, input); err != nil {
		fmt.Fprintf(s.out, "Failed to start spell-checking task: %s\n", err)
		return true
	}
	fmt.Fprintln(s.out, "Spell-checking task started...")
	return true
}

func (s *session) progress() {
	p := s.coord.Progress()
	fmt.Fprintf(s.out, "Running: %d, finished: %d, failed: %d\n", p.InFlight, p.Completed, p.Failed)
	if len(p.Trending) == 0 {
		return
	}
	words := make([]string, 0, len(p.Trending))
	for _, e := range p.Trending {
		words = append(words, fmt.Sprintf("%s (~%d)", e.Key, e.Count))
	}
	fmt.Fprintf(s.out, "Trending misspellings: %s\n", strings.Join(words, ", "))
}

func logMetrics(gatherer prometheus.Gatherer) {
	families, err := gatherer.Gather()
	if err != nil {
		logrus.Debugf("failed to gather metrics: %q", err)
		return
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			if counter := m.GetCounter(); counter != nil {
				logrus.WithField("metric", family.GetName()).Debugf("%v", counter.GetValue())
			}
		}
	}
}
