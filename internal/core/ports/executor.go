// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/tasker/internal/core/domain"
)

// Executor defines the interface for running external commands on behalf of tasks.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command, streaming its output to stdout and stderr.
	//
	// It returns an error if the command cannot be started or exits unsuccessfully.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
