// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger that writes human-readable lines below ERROR to
// stdout and ERROR and above to stderr. When file is set, every entry at or
// above level is also appended to it as JSON. The returned cleanup flushes
// the logger and closes the file.
func New(level, file string) (*zap.Logger, func(), error) {
	minLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	console := zapcore.NewConsoleEncoder(consoleCfg)

	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l < zapcore.ErrorLevel
	})
	errorAndUp := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l >= zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(console, zapcore.Lock(os.Stdout), belowError),
		zapcore.NewCore(console, zapcore.Lock(os.Stderr), errorAndUp),
	}

	closeFile := func() {}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		closeFile = func() { f.Close() }

		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), minLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	cleanup := func() {
		_ = logger.Sync()
		closeFile()
	}
	return logger, cleanup, nil
}
