package logging

import (
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format selects the on-disk encoding of a rotating log file.
type Format int

const (
	FormatText Format = iota
	FormatJSONLines
)

// FileLoggerOptions configures NewFileLogger.
type FileLoggerOptions struct {
	// Path is the main log file's path (rotated per the size, backup
	// and age fields below). Required.
	Path string
	// Format selects text or JSON-lines encoding.
	Format Format
	// Level is the minimum level written (logrus.DebugLevel etc).
	// Defaults to logrus.InfoLevel when unset.
	Level logrus.Level
	// MaxSizeMB caps a single log file's size before rotation.
	// Defaults to 10 (10 MiB, spec §6).
	MaxSizeMB int
	// MaxBackups caps retained rotated files. Defaults to 30 (spec §6).
	MaxBackups int
	// MaxAgeDays caps how long a rotated file is kept. Defaults to 1.
	// Rotation itself is triggered by size only; files are not rotated
	// on a daily schedule.
	MaxAgeDays int
}

func (o FileLoggerOptions) withDefaults() FileLoggerOptions {
	if o.MaxSizeMB == 0 {
		o.MaxSizeMB = 10
	}
	if o.MaxBackups == 0 {
		o.MaxBackups = 30
	}
	if o.MaxAgeDays == 0 {
		o.MaxAgeDays = 1
	}
	if o.Level == 0 {
		o.Level = logrus.InfoLevel
	}
	return o
}

// FileLogger is the production Logger, a logrus.Logger writing through
// a lumberjack.Logger, which rotates the file when it reaches MaxSizeMB.
// There is no time-based (daily) rotation.
type FileLogger struct {
	entry *logrus.Entry
}

// NewFileLogger opens (creating if absent) a rotating log file at
// opts.Path and returns a Logger backed by it.
func NewFileLogger(opts FileLoggerOptions) *FileLogger {
	opts = opts.withDefaults()

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}

	l := logrus.New()
	l.SetOutput(rotator)
	l.SetLevel(opts.Level)
	if opts.Format == FormatJSONLines {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &FileLogger{entry: logrus.NewEntry(l)}
}

// newFromWriter is used by NewCommandLogger/NewTransitionLogger, which
// share the rotation shape but write to their own named files.
func newFromWriter(w io.Writer, level logrus.Level, format Format) *FileLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	if format == FormatJSONLines {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return &FileLogger{entry: logrus.NewEntry(l)}
}

// NewCommandLogger opens the separate command log named in spec §6,
// rotated identically to the main log, at debug level. The CLI routes
// the executor's log events here (write failures, missing echoes,
// timeouts); individual sent commands and received chunks are not
// logged.
func NewCommandLogger(path string) *FileLogger {
	return newFromWriter(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 30,
		MaxAge:     1,
		Compress:   true,
	}, logrus.DebugLevel, FormatJSONLines)
}

// NewTransitionLogger opens the separate state-transition log named in
// spec §6. Every recovery.Machine transition is written here.
func NewTransitionLogger(path string) *FileLogger {
	return newFromWriter(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 30,
		MaxAge:     1,
		Compress:   true,
	}, logrus.InfoLevel, FormatJSONLines)
}

func withFields(e *logrus.Entry, fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return e
	}
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return e.WithFields(lf)
}

func (f *FileLogger) Debug(msg string, fields ...Field) { withFields(f.entry, fields).Debug(msg) }
func (f *FileLogger) Info(msg string, fields ...Field)  { withFields(f.entry, fields).Info(msg) }
func (f *FileLogger) Warn(msg string, fields ...Field)  { withFields(f.entry, fields).Warn(msg) }
func (f *FileLogger) Error(msg string, fields ...Field) { withFields(f.entry, fields).Error(msg) }
