// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/tasker/internal/adapters/config"
	_ "go.trai.ch/tasker/internal/adapters/logger"
	_ "go.trai.ch/tasker/internal/adapters/shell"
	_ "go.trai.ch/tasker/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/tasker/internal/app"
	_ "go.trai.ch/tasker/internal/engine/scheduler"
)
