package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tasker/internal/app"
	_ "go.trai.ch/tasker/internal/wiring"
)

// TestGraftComponents ensures every node needed by the CLI is registered and
// resolvable.
func TestGraftComponents(t *testing.T) {
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
	require.NotNil(t, components.Telemetry)
	require.NoError(t, components.Telemetry.Close())
}
