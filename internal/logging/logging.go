package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugared zap logger shared by the cli and the conversion pipeline
type Logger struct {
	*zap.SugaredLogger
}

// builds a logger writing to stderr. Console encoding with colored levels is
// used on a terminal, JSON lines otherwise.
func NewLogger(verbose bool) *Logger {
	logger, err := build(verbose, isTerminal(os.Stderr))
	if err != nil {
		return Nop()
	}
	return logger
}

func build(verbose, terminal bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if terminal {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	}

	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: base.Sugar()}, nil
}

// discards everything
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// wraps an existing zap logger, mostly useful with zaptest/observer in tests
func FromZap(base *zap.Logger) *Logger {
	if base == nil {
		return Nop()
	}
	return &Logger{SugaredLogger: base.Sugar()}
}

// derives a logger carrying extra key/value pairs
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l == nil {
		return Nop().With(keysAndValues...)
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}

// derives a logger tagged with a component name
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// flushes buffered entries; errors from syncing a terminal are ignored
func (l *Logger) Close() {
	if l == nil || l.SugaredLogger == nil {
		return
	}
	_ = l.Sync()
}

// returns l, or a no-op logger when l is nil
func OrNop(l *Logger) *Logger {
	if l == nil || l.SugaredLogger == nil {
		return Nop()
	}
	return l
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
