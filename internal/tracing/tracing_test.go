package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/danielpatrickdp/scenechat/internal/config"
)

func TestInit_DisabledIsNoOp(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
