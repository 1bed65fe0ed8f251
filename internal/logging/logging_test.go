package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit_AttachesLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	ctx, err := Init(context.Background(),
		WithLogLevel("info"),
		WithLogFormat(LogFormatJSON),
		WithOutputPaths([]string{path}),
	)
	require.NoError(t, err)

	l := ctxzap.Extract(ctx)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l.Info("hello", zap.String("k", "v"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestWithLogLevel_Invalid(t *testing.T) {
	zc := zap.NewProductionConfig()
	WithLogLevel("not-a-level")(&zc)
	assert.Equal(t, zapcore.DebugLevel, zc.Level.Level())
}

func TestWithLogFormat(t *testing.T) {
	zc := zap.NewProductionConfig()
	WithLogFormat(LogFormatConsole)(&zc)
	assert.Equal(t, LogFormatConsole, zc.Encoding)

	WithLogFormat("xml")(&zc)
	assert.Equal(t, LogFormatJSON, zc.Encoding)
}
