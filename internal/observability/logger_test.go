// internal/observability/logger_test.go
package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/prospector/internal/config"
)

type memSink struct {
	strings.Builder
}

func (*memSink) Sync() error { return nil }

func testLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "prospector-test",
	}
}

func TestInitializeWritesThroughConfiguredLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(testLoggerConfig(), zapcore.Lock(sink))

	log := GetLogger()
	require.NotNil(t, log)
	log.Debug("visible at debug")
	log.Info("hello")
	require.NoError(t, log.Sync())

	out := sink.String()
	assert.Contains(t, out, "visible at debug")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "prospector-test")
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memSink{}
	second := &memSink{}
	Initialize(testLoggerConfig(), zapcore.Lock(first))
	Initialize(testLoggerConfig(), zapcore.Lock(second))

	GetLogger().Info("routed to first sink")
	assert.Contains(t, first.String(), "routed to first sink")
	assert.Empty(t, second.String())
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "shouting"
	sink := &memSink{}
	Initialize(cfg, zapcore.Lock(sink))

	GetLogger().Debug("suppressed")
	GetLogger().Info("kept")
	assert.NotContains(t, sink.String(), "suppressed")
	assert.Contains(t, sink.String(), "kept")
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	assert.NotNil(t, GetLogger())
}
