package logger

import (
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type StdLogger struct {
	internalLogger *slog.Logger
}

func New() Logger {
	l := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return &StdLogger{internalLogger: l}
}

func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.internalLogger.Info(msg, args...)
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	l.internalLogger.Debug(msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...interface{}) {
	l.internalLogger.Warn(msg, args...)
}

func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.internalLogger.Error(msg, args...)
}

// FileLogger appends structured entries to a log file via logrus.
type FileLogger struct {
	internalLogger *logrus.Logger
}

func NewFile(path string, debug bool) (Logger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetOutput(file)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &FileLogger{internalLogger: l}, nil
}

func (l *FileLogger) Info(msg string, args ...interface{}) {
	l.internalLogger.WithFields(toFields(args)).Info(msg)
}

func (l *FileLogger) Debug(msg string, args ...interface{}) {
	l.internalLogger.WithFields(toFields(args)).Debug(msg)
}

func (l *FileLogger) Warn(msg string, args ...interface{}) {
	l.internalLogger.WithFields(toFields(args)).Warn(msg)
}

func (l *FileLogger) Error(msg string, args ...interface{}) {
	l.internalLogger.WithFields(toFields(args)).Error(msg)
}

// toFields converts slog-style alternating key/value args into logrus
// fields. A trailing key with no value is kept with a nil value.
func toFields(args []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(args) {
			fields[key] = args[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}

// MultiLogger fans every entry out to all wrapped loggers.
type MultiLogger struct {
	loggers []Logger
}

func Multi(loggers ...Logger) Logger {
	return &MultiLogger{loggers: loggers}
}

func (l *MultiLogger) Info(msg string, args ...interface{}) {
	for _, sub := range l.loggers {
		sub.Info(msg, args...)
	}
}

func (l *MultiLogger) Debug(msg string, args ...interface{}) {
	for _, sub := range l.loggers {
		sub.Debug(msg, args...)
	}
}

func (l *MultiLogger) Warn(msg string, args ...interface{}) {
	for _, sub := range l.loggers {
		sub.Warn(msg, args...)
	}
}

func (l *MultiLogger) Error(msg string, args ...interface{}) {
	for _, sub := range l.loggers {
		sub.Error(msg, args...)
	}
}
