package logger

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevel(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New("chatty")
	assert.Error(t, err)
}

func TestNamedAndFromContext(t *testing.T) {
	assert.NotNil(t, Named(nil, "svc"))

	base := zap.NewNop()
	c := &gin.Context{}
	assert.Same(t, base, FromContext(c, base))

	child := base.Named("req")
	c.Set(ContextKey, child)
	assert.Same(t, child, FromContext(c, base))
}
