package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	sugar   *zap.SugaredLogger
	logFile *os.File
)

// ParseLevel maps "debug", "info", "warn" and "error" to a zap level.
// Anything else is info.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// InitLogger writes to stdout and, when filename is set, appends JSON lines
// to that file as well. Stdout uses a console encoder on a terminal and JSON
// otherwise.
func InitLogger(filename string, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl := zap.NewAtomicLevelAt(ParseLevel(level))
	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder(), zapcore.Lock(os.Stdout), lvl),
	}

	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		closeFileLocked()
		logFile = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			lvl,
		))
	}

	sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
	return nil
}

func stdoutEncoder() zapcore.Encoder {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
}

// ReplaceCore routes all logging through core and returns a func restoring
// the previous logger. Used by tests with zaptest/observer.
func ReplaceCore(core zapcore.Core) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := sugar
	sugar = zap.New(core).Sugar()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		sugar = prev
	}
}

// Close flushes buffered entries and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
	if logFile != nil {
		sugar = nil
	}
	closeFileLocked()
}

func closeFileLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		sugar = zap.New(zapcore.NewCore(stdoutEncoder(), zapcore.Lock(os.Stdout), zapcore.InfoLevel)).Sugar()
	}
	return sugar
}

// Logger is a child logger. Its methods follow the package-level helpers:
// Info, Warn and Error take a message plus key/value pairs, the f variants
// take a format string.
type Logger struct {
	s *zap.SugaredLogger
}

// With returns a child logger carrying the given key/value pairs.
func With(args ...interface{}) *Logger {
	return &Logger{s: get().With(args...)}
}

func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{s: l.s.With(args...)}
}

func (l *Logger) Info(msg string, args ...interface{}) { l.s.Infow(msg, args...) }
func (l *Logger) Infof(format string, v ...interface{}) { l.s.Infof(format, v...) }
func (l *Logger) Debugf(format string, v ...interface{}) { l.s.Debugf(format, v...) }
func (l *Logger) Warn(msg string, args ...interface{}) { l.s.Warnw(msg, args...) }
func (l *Logger) Warnf(format string, v ...interface{}) { l.s.Warnf(format, v...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.s.Errorw(msg, args...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.s.Errorf(format, v...) }

func Info(msg string, args ...interface{}) {
	get().Infow(msg, args...)
}

func Infof(format string, v ...interface{}) {
	get().Infof(format, v...)
}

func Debugf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Warn(msg string, args ...interface{}) {
	get().Warnw(msg, args...)
}

func Warnf(format string, v ...interface{}) {
	get().Warnf(format, v...)
}

func Error(msg string, args ...interface{}) {
	get().Errorw(msg, args...)
}

func Errorf(format string, v ...interface{}) {
	get().Errorf(format, v...)
}
