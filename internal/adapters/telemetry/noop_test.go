package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tasker/internal/adapters/telemetry"
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports"
)

func TestNoOp_Record(t *testing.T) {
	tel := telemetry.NewNoOp()

	ctx, v := tel.Record(context.Background(), "build")
	require.NotNil(t, v)

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, v, fromCtx)

	n, err := v.Stdout().Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	v.Log(domain.LogLevelInfo, "ignored")
	v.Cached()
	v.Complete(errors.New("ignored"))
	assert.NoError(t, tel.Close())
}
