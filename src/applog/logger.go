package applog

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents severity.
type LogLevel = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

var levelNames = map[string]LogLevel{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var (
	mu           sync.RWMutex
	currentLevel = zap.NewAtomicLevelAt(LevelInfo)
	baseLogger   = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), currentLevel)
	return zap.New(core)
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	baseLogger = newLogger(w)
}

// SetLogLevel parses and sets global log level. Unknown names are ignored.
func SetLogLevel(s string) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return
	}
	currentLevel.SetLevel(l)
}

// GetLogLevel returns current global log level.
func GetLogLevel() LogLevel { return currentLevel.Level() }

// Logger returns the structured logger for callers that log with fields.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger
}

func sugar() *zap.SugaredLogger { return Logger().Sugar() }

// Public helpers. A message without args is written verbatim so literal % survives.
func Debugf(format string, a ...interface{}) { sugar().Debugf(format, a...) }
func Infof(format string, a ...interface{})  { sugar().Infof(format, a...) }
func Warnf(format string, a ...interface{})  { sugar().Warnf(format, a...) }
func Errorf(format string, a ...interface{}) { sugar().Errorf(format, a...) }

// Sync flushes buffered entries; call before exit.
func Sync() { _ = Logger().Sync() }

// Timing helper for phases.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}
