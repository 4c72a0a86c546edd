package logging

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// engineLogger carries the simulation trace. A run at trace level writes one
// line per step, so it has its own level, independent of logger.
var engineLogger *logrus.Logger

var engineRuns atomic.Uint64

func init() {
	logger = newTextLogger(logrus.InfoLevel, nil)
	engineLogger = newTextLogger(logrus.WarnLevel, logrus.FieldMap{
		logrus.FieldKeyTime:  "time",
		logrus.FieldKeyLevel: "level",
		logrus.FieldKeyMsg:   "engine_msg",
	})
}

func newTextLogger(level logrus.Level, fields logrus.FieldMap) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		FieldMap:      fields,
	})
	l.SetLevel(level)
	return l
}

func GetLogger() *logrus.Logger {
	return logger
}

func GetEngineLogger() *logrus.Logger {
	return engineLogger
}

// NewEngineRun returns the entry one simulation run logs through. Every line
// carries the algorithm, the task count and a process-wide run number, so the
// traces of runs scheduled in parallel can be told apart. A nil logger means
// the engine logger.
func NewEngineRun(l *logrus.Logger, algorithm string, tasks int) *logrus.Entry {
	if l == nil {
		l = engineLogger
	}
	return l.WithFields(logrus.Fields{
		"run":       engineRuns.Add(1),
		"algorithm": algorithm,
		"tasks":     tasks,
	})
}

func SetLogLevel(level string) error {
	return setLevel(logger, level)
}

func SetEngineLogLevel(level string) error {
	return setLevel(engineLogger, level)
}

func setLevel(l *logrus.Logger, level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(parsed)
	return nil
}

func SetFormatter(formatter logrus.Formatter) {
	logger.SetFormatter(formatter)
}

// SetOutput redirects both loggers, mainly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
	engineLogger.SetOutput(w)
}
