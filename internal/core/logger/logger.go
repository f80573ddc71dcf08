package logger

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"go-gin-storefront/internal/core/config"
)

// FromConfig builds the process logger: stdout always, plus a size-rotated file
// when log.file.enable is set. fixed fields (service name, env) go on every entry.
// The returned func flushes buffered entries.
func FromConfig(c config.Log, fixed ...zap.Field) (*zap.Logger, func()) {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	enc := encoder(c.JSON)

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)}
	if c.File.Enable && c.File.Filename != "" {
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotator(c.File)), lvl))
	}

	// 同一秒内同样的消息超过 100 条后按 1/100 采样
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !c.JSON {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)
	if len(fixed) > 0 {
		l = l.With(fixed...)
	}
	return l, func() { _ = l.Sync() }
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func rotator(f config.LogFile) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   f.Filename,
		MaxSize:    max(1, f.MaxSizeMB),
		MaxBackups: max(0, f.MaxBackups),
		MaxAge:     max(0, f.MaxAgeDays),
		Compress:   f.Compress,
	}
}

type ctxKey struct{}

// WithContext stores a request-scoped logger on ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or fallback when none was attached.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
			return l
		}
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}

type levelWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w levelWriter) Write(p []byte) (int, error) {
	if ce := w.l.Check(w.level, strings.TrimRight(string(p), "\r\n")); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter 把 gin 的调试输出接到 zap
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return levelWriter{l: l, level: level}
}

// ToStdLogger 给 http.Server.ErrorLog 之类只认 *log.Logger 的地方用
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

// RedirectStdLog sends the standard library's global logger to l until the returned func runs.
func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
