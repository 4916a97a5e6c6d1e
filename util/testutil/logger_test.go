package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	log := NewSimpleLogger(false)
	require.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	require.True(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))

	log = NewSimpleLogger(true)
	require.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	log.Named("test").Debugf("debug %d", 1)
	_ = log.Sync()
}
