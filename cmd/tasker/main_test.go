package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/tasker/internal/app"
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports/mocks"
	"go.trai.ch/tasker/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type harness struct {
	loader    *mocks.MockConfigLoader
	executor  *mocks.MockExecutor
	logger    *mocks.MockLogger
	telemetry *mocks.MockTelemetry
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	return &harness{
		loader:    mocks.NewMockConfigLoader(ctrl),
		executor:  mocks.NewMockExecutor(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		telemetry: mocks.NewMockTelemetry(ctrl),
		stdout:    new(bytes.Buffer),
		stderr:    new(bytes.Buffer),
	}
}

func (h *harness) provider(context.Context) (*app.Components, error) {
	a := app.New(h.loader, h.executor, scheduler.New(nil), h.logger)
	return app.NewComponents(a, h.logger, h.telemetry), nil
}

func (h *harness) run(args ...string) int {
	return run(context.Background(), args, h.stdout, h.stderr, h.provider)
}

func taskfile() *domain.Taskfile {
	return &domain.Taskfile{
		Root: "/work",
		Tasks: []domain.TaskDefinition{
			{Name: "build", Command: domain.Command{Args: []string{"make"}, Dir: "/work"}},
			{Name: "ci", DependsOn: []string{"build"}},
		},
	}
}

func TestRun_Success(t *testing.T) {
	h := newHarness(t)
	h.telemetry.EXPECT().Close().Return(nil)
	h.loader.EXPECT().Load(".").Return(taskfile(), nil)
	h.executor.EXPECT().Execute(gomock.Any(), domain.Command{Args: []string{"make"}, Dir: "/work"}, gomock.Any(), gomock.Any()).Return(nil)

	assert.Equal(t, 0, h.run("run", "ci"))
	assert.Contains(t, h.stdout.String(), "build completed")
	assert.Contains(t, h.stdout.String(), "ci completed")
}

func TestRun_ExplicitFile(t *testing.T) {
	h := newHarness(t)
	h.telemetry.EXPECT().Close().Return(nil)
	h.loader.EXPECT().Load("ci/tasker.yaml").Return(taskfile(), nil)
	h.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	assert.Equal(t, 0, h.run("-f", "ci/tasker.yaml", "run", "build"))
}

func TestRun_ExecutionFailed(t *testing.T) {
	h := newHarness(t)
	h.telemetry.EXPECT().Close().Return(nil)
	h.loader.EXPECT().Load(".").Return(taskfile(), nil)
	h.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrCommandFailed)
	h.logger.EXPECT().Warn(gomock.Any())

	assert.Equal(t, 1, h.run("run", "ci"))
	assert.Contains(t, h.stdout.String(), "build failed")
}

func TestRun_ConfigError(t *testing.T) {
	h := newHarness(t)
	h.telemetry.EXPECT().Close().Return(nil)
	h.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)
	h.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.True(t, errors.Is(err, domain.ErrConfigNotFound))
	})

	assert.Equal(t, 1, h.run("run", "ci"))
}

func TestRun_UnknownCommand(t *testing.T) {
	h := newHarness(t)
	h.telemetry.EXPECT().Close().Return(nil)
	h.logger.EXPECT().Error(gomock.Any())

	assert.Equal(t, 1, h.run("explode"))
}

func TestRun_TelemetryCloseError(t *testing.T) {
	h := newHarness(t)
	closeErr := errors.New("flush failed")
	h.telemetry.EXPECT().Close().Return(closeErr)
	h.logger.EXPECT().Error(closeErr)

	assert.Equal(t, 0, h.run("version"))
	assert.Equal(t, "tasker version dev\n", h.stdout.String())
}

func TestRun_ProviderError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	provider := func(context.Context) (*app.Components, error) {
		return nil, errors.New("wiring failed")
	}

	code := run(context.Background(), []string{"run", "ci"}, &stdout, &stderr, provider)

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: wiring failed\n", stderr.String())
}
