package ports

import "go.trai.ch/tasker/internal/core/domain"

// ConfigLoader defines the interface for loading task definitions.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load returns the definitions of the taskfile at path. When path is a
	// directory the taskfile is searched for in it and its parents.
	Load(path string) (*domain.Taskfile, error)
}
