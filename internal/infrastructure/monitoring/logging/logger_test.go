package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Helper to create a logger that writes to a buffer for verification
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core := zapcore.NewCore(encoder, buf, level)
	return &zapLogger{z: zap.New(core), level: level}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	cfg := LogConfig{
		Level:       LevelInfo,
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	cfg := LogConfig{
		Level:  LevelDebug,
		Format: "console",
	}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPaths(t *testing.T) {
	cfg := LogConfig{
		OutputPaths: []string{},
	}
	l, err := NewLogger(cfg)
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewDevelopmentLogger_NotNil(t *testing.T) {
	assert.NotNil(t, NewDevelopmentLogger())
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
		l.Fatal("msg")
	})
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("child"))
}

func TestZapLogger_LevelsWriteLog(t *testing.T) {
	cases := []struct {
		level string
		emit  func(Logger, string)
	}{
		{"debug", func(l Logger, m string) { l.Debug(m) }},
		{"info", func(l Logger, m string) { l.Info(m) }},
		{"warn", func(l Logger, m string) { l.Warn(m) }},
		{"error", func(l Logger, m string) { l.Error(m) }},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			l, buf := newTestLogger(t)
			tc.emit(l, tc.level+" msg")
			assert.Contains(t, buf.String(), tc.level+" msg")
			assert.Contains(t, buf.String(), "\"level\":\""+tc.level+"\"")
		})
	}
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("hit", "x0104"), Int("atoms", 12), Strings("unmatched", []string{"x1", "x2"})).Info("msg")
	assert.Contains(t, buf.String(), "\"hit\":\"x0104\"")
	assert.Contains(t, buf.String(), "\"atoms\":12")
	assert.Contains(t, buf.String(), "\"unmatched\":[\"x1\",\"x2\"]")
}

func TestZapLogger_Named(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Named("compositor").Info("msg")
	assert.Contains(t, buf.String(), "\"logger\":\"compositor\"")
}

func TestZapLogger_SetLevel(t *testing.T) {
	l, buf := newTestLogger(t)
	setter, ok := l.(LevelSetter)
	require.True(t, ok)

	setter.SetLevel(LevelWarn)
	l.Info("hidden")
	l.Named("child").Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestErr_Field(t *testing.T) {
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestSetDefault_UpdatesGlobal(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil must not replace the default")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l, _ := newTestLogger(t)
	assert.Equal(t, l, OrNop(l))
}

func TestLogOperationDuration_FastOperation(t *testing.T) {
	l, buf := newTestLogger(t)
	LogOperationDuration(l, "place", time.Now(), String("candidate", "c1"))
	assert.Contains(t, buf.String(), "operation completed")
	assert.Contains(t, buf.String(), "\"level\":\"info\"")
	assert.Contains(t, buf.String(), "duration_ms")
	assert.Contains(t, buf.String(), "\"candidate\":\"c1\"")
}

func TestLogOperationDuration_SlowOperation(t *testing.T) {
	l, buf := newTestLogger(t)
	LogOperationDuration(l, "place", time.Now().Add(-time.Minute))
	assert.Contains(t, buf.String(), "slow operation completed")
	assert.Contains(t, buf.String(), "\"level\":\"warn\"")
}

//Personal.AI order the ending
