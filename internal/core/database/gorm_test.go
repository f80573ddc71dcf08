package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{"native untouched", "root:pw@tcp(db:3306)/shop?parseTime=true", "", "", "root:pw@tcp(db:3306)/shop?parseTime=true"},
		{"url", "mysql://root:pw@db:3306/shop", "", "", "root:pw@tcp(db:3306)/shop?charset=utf8mb4&parseTime=true"},
		{"jdbc with overrides", "jdbc:mysql://db:3306/shop?useSSL=false&useUnicode=true", "app", "s3cret",
			"app:s3cret@tcp(db:3306)/shop?charset=utf8mb4&parseTime=true&tls=false"},
		{"empty", "  ", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/shop", maskDSN("root:pw@tcp(db:3306)/shop"))
	assert.Equal(t, "tcp(db:3306)/shop", maskDSN("tcp(db:3306)/shop"))
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"}, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}

func TestZapGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewZapGormLogger(zap.New(core), "warn", 50*time.Millisecond)
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), fc, nil)
	assert.Equal(t, 0, logs.Len(), "fast query below info level is silent")

	gl.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "not-found is not an error")

	gl.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "slow sql", logs.All()[0].Message)

	gl.Trace(ctx, time.Now(), fc, errors.New("syntax"))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)

	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), fc, errors.New("syntax"))
	assert.Equal(t, 2, logs.Len())
}
