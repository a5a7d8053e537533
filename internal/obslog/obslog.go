// Package obslog wraps go.uber.org/zap into the small,
// level-selectable JSON logger every cmd/* entrypoint constructs at
// startup, grounded on Aidin1998-finalex/pkg/logger's NewLogger.
package obslog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger writing JSON lines to stdout at the
// given level ("debug", "info", "warn", "error"; unrecognized values
// fall back to "info"), tagged with component in every entry.
func New(level, component string) *zap.SugaredLogger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger.Sugar().With("component", component)
}

// Fatal logs msg at error level with err and exits the process with
// status 1, matching spec.md §6's "exit code 1 on fatal startup
// failure" for every cmd/* entrypoint.
func Fatal(log *zap.SugaredLogger, msg string, err error) {
	log.Errorw(msg, "error", err)
	fmt.Fprintln(os.Stderr, msg+": "+err.Error())
	os.Exit(1)
}
