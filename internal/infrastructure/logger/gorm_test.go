package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func traceQuery(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLoggerTrace(t *testing.T) {
	t.Run("failed statement logs at error", func(t *testing.T) {
		gl, logs := observedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), traceQuery(`UPDATE "shipments" SET version = 2`), assert.AnError)

		entries := logs.FilterMessage("sql failed").All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].ContextMap()["sql"], "shipments")
	})

	t.Run("record not found is suppressed by default", func(t *testing.T) {
		gl, logs := observedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), traceQuery(`SELECT * FROM "shipments"`), gormlogger.ErrRecordNotFound)

		assert.Zero(t, logs.Len())
	})

	t.Run("record not found logs when re-enabled", func(t *testing.T) {
		gl, logs := observedGormLogger(gormlogger.Error, WithNotFoundLogging())
		gl.Trace(context.Background(), time.Now(), traceQuery(`SELECT * FROM "shipments"`), gormlogger.ErrRecordNotFound)

		assert.Equal(t, 1, logs.FilterMessage("sql failed").Len())
	})

	t.Run("slow statement logs at warn", func(t *testing.T) {
		gl, logs := observedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Millisecond), traceQuery(`SELECT * FROM "ap_invoice_uploads"`), nil)

		entries := logs.FilterMessage("slow sql").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("silent level traces nothing", func(t *testing.T) {
		gl, logs := observedGormLogger(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), traceQuery("SELECT 1"), assert.AnError)

		assert.Zero(t, logs.Len())
	})

	t.Run("trace carries request id from context", func(t *testing.T) {
		gl, logs := observedGormLogger(gormlogger.Info)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")
		gl.Trace(ctx, time.Now(), traceQuery("SELECT 1"), nil)

		entries := logs.FilterMessage("sql").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	})
}

func TestGormLoggerLogMode(t *testing.T) {
	gl, _ := observedGormLogger(gormlogger.Warn)
	quiet := gl.LogMode(gormlogger.Silent)

	assert.NotSame(t, gormlogger.Interface(gl), quiet)
	assert.Equal(t, gormlogger.Warn, gl.level)
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"warning", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
		{"trace", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.input))
		})
	}
}
