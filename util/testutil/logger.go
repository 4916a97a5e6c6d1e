package testutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewSimpleLogger is a development logger with short timestamps. Info level unless debug
func NewSimpleLogger(debug bool) *zap.SugaredLogger {
	lvl := zapcore.InfoLevel
	if debug {
		lvl = zapcore.DebugLevel
	}
	return NewLogger(lvl)
}

func NewLogger(lvl zapcore.Level) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("04:05.000")
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		panic(err)
	}
	return log.Sugar()
}
