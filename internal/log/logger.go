package log

import (
	"os"
	"strings"

	"rewear/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger JSON 輸出；warn 以上走 stderr，其餘走 stdout
func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(conf.Log.Level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	atomic := zap.NewAtomicLevelAt(lvl)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.LevelKey = "level"
	encCfg.TimeKey = "ts"
	encCfg.CallerKey = "caller"
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if conf.App.Env == "development" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder = zapcore.NewJSONEncoder(encCfg)
	if conf.App.Env == "development" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	stdoutLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l < zapcore.WarnLevel
	})
	stderrLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), stdoutLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), stderrLevel),
	)

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(
			zap.String("service", conf.App.Name),
			zap.String("env", conf.App.Env),
		),
	)
	logger.Info("zap logger ready", zap.Stringer("level", lvl))
	return logger, nil
}
