package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-gin-storefront/internal/core/logger"
)

// zapGormLogger routes gorm's SQL log through zap, using the request-scoped logger
// when the statement runs under a request context.
type zapGormLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewZapGormLogger(l *zap.Logger, level string, slow time.Duration) gormlogger.Interface {
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return &zapGormLogger{base: l.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: parseGormLevel(level), slow: slow}
}

func (g *zapGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *zapGormLogger) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, g.base)
}

func (g *zapGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.log(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (g *zapGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.log(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *zapGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.log(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

func (g *zapGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	// not-found 与唯一冲突是业务分支，不算错误
	case err != nil && g.level >= gormlogger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		g.log(ctx).Error("sql error", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case elapsed > g.slow && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log(ctx).Warn("slow sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log(ctx).Debug("sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
