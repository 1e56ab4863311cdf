package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger. level is one of error, warn,
// info, debug or trace (any case). A non-empty file receives the logs instead
// of stderr; the returned closer must be called on exit.
func Init(level, file string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	logrus.SetLevel(lvl)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: file != "",
	})

	if file == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	out, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", file)
	}
	logrus.SetOutput(out)
	return out, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
