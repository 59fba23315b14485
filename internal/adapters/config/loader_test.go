package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tasker/internal/adapters/config"
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeTaskfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.TaskFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	return config.NewLoader(mocks.NewMockLogger(gomock.NewController(t)))
}

func TestLoader_Load(t *testing.T) {
	tmpDir := t.TempDir()
	writeTaskfile(t, tmpDir, `
version: "1"
tasks:
  fmt:
    description: format sources
    cmd: ["gofmt", "-l", "."]
  "test:{pkg}":
    cmd: ["go", "test", "./{pkg}/..."]
    dependsOn: ["fmt"]
    environment:
      CGO_ENABLED: "0"
    dir: "src"
  ci:
    dependsOn: ["test:core", "test:engine"]
  nap:
    sleep: 250ms
`)

	tf, err := newLoader(t).Load(tmpDir)
	require.NoError(t, err)

	root, err := filepath.Abs(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, root, tf.Root)

	require.Len(t, tf.Tasks, 4)
	names := make([]string, len(tf.Tasks))
	for i, def := range tf.Tasks {
		names[i] = def.Name
	}
	assert.Equal(t, []string{"ci", "fmt", "nap", "test:{pkg}"}, names)

	ci := tf.Tasks[0]
	assert.True(t, ci.Command.IsZero())
	assert.Equal(t, []string{"test:core", "test:engine"}, ci.DependsOn)

	fmtTask := tf.Tasks[1]
	assert.Equal(t, "format sources", fmtTask.Description)
	assert.Equal(t, root, fmtTask.Command.Dir)

	assert.Equal(t, 250*time.Millisecond, tf.Tasks[2].Sleep)

	test := tf.Tasks[3]
	assert.Equal(t, []string{"go", "test", "./{pkg}/..."}, test.Command.Args)
	assert.Equal(t, map[string]string{"CGO_ENABLED": "0"}, test.Command.Environment)
	assert.Equal(t, filepath.Join(root, "src"), test.Command.Dir)
	assert.Equal(t, []string{"fmt"}, test.DependsOn)
}

func TestLoader_Load_Discovery(t *testing.T) {
	tmpDir := t.TempDir()
	writeTaskfile(t, tmpDir, `
version: "1"
tasks:
  root-task:
    cmd: ["echo", "root"]
`)
	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	tf, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	require.Len(t, tf.Tasks, 1)
	assert.Equal(t, "root-task", tf.Tasks[0].Name)

	root, err := filepath.Abs(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, root, tf.Root, "commands run relative to the taskfile")
}

func TestLoader_Load_ExplicitFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1"
root: ".."
tasks:
  only:
    cmd: ["true"]
`), 0o600))

	tf, err := newLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, tf.Tasks, 1)

	parent, err := filepath.Abs(filepath.Dir(tmpDir))
	require.NoError(t, err)
	assert.Equal(t, parent, tf.Root)
}

func TestLoader_Load_NotFound(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir())
	require.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = newLoader(t).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigReadFailed.Error())
}

func TestLoader_Load_EmptyWarns(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTaskfile(t, tmpDir, `version: "1"`)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(path + " defines no tasks")

	tf, err := config.NewLoader(log).Load(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, tf.Tasks)
}

func TestLoader_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIs  error
		wantMsg string
	}{
		{
			name:    "unsupported version",
			content: "version: \"2\"\ntasks: {a: {cmd: [\"true\"]}}\n",
			wantIs:  domain.ErrUnsupportedVersion,
		},
		{
			name:    "missing version",
			content: "tasks: {a: {cmd: [\"true\"]}}\n",
			wantIs:  domain.ErrUnsupportedVersion,
		},
		{
			name:    "reserved name",
			content: "version: \"1\"\ntasks: {all: {cmd: [\"true\"]}}\n",
			wantIs:  domain.ErrReservedTaskName,
		},
		{
			name:    "invalid pattern",
			content: "version: \"1\"\ntasks: {\"a:{\": {cmd: [\"true\"]}}\n",
			wantIs:  domain.ErrInvalidPattern,
		},
		{
			name:    "cmd and sleep",
			content: "version: \"1\"\ntasks: {a: {cmd: [\"true\"], sleep: 1s}}\n",
			wantIs:  domain.ErrInvalidTaskDefinition,
		},
		{
			name:    "bad sleep",
			content: "version: \"1\"\ntasks: {a: {sleep: soon}}\n",
			wantIs:  domain.ErrInvalidTaskDefinition,
		},
		{
			name:    "empty dependency",
			content: "version: \"1\"\ntasks: {a: {dependsOn: [\"\"]}}\n",
			wantIs:  domain.ErrInvalidTaskDefinition,
		},
		{
			name:    "unknown field",
			content: "version: \"1\"\ntasks: {a: {command: [\"true\"]}}\n",
			wantMsg: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:    "unterminated quote in cmd",
			content: "version: \"1\"\ntasks: {a: {cmd: \"echo 'oops\"}}\n",
			wantMsg: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:    "cmd mapping",
			content: "version: \"1\"\ntasks: {a: {cmd: {run: x}}}\n",
			wantMsg: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:    "missing dotenv",
			content: "version: \"1\"\ndotenv: [\"missing.env\"]\ntasks: {a: {cmd: [\"true\"]}}\n",
			wantMsg: domain.ErrConfigReadFailed.Error(),
		},
		{
			name:    "malformed yaml",
			content: "version: [\n",
			wantMsg: domain.ErrConfigParseFailed.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeTaskfile(t, tmpDir, tt.content)

			_, err := newLoader(t).Load(tmpDir)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoader_Load_CommandString(t *testing.T) {
	tmpDir := t.TempDir()
	writeTaskfile(t, tmpDir, `
version: "1"
tasks:
  greet:
    cmd: echo "hello world" '{name}'
`)

	tf, err := newLoader(t).Load(tmpDir)
	require.NoError(t, err)
	require.Len(t, tf.Tasks, 1)
	assert.Equal(t, []string{"echo", "hello world", "{name}"}, tf.Tasks[0].Command.Args)
}

func TestLoader_Load_Dotenv(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "base.env"), []byte("REGION=eu\nLEVEL=info\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "local.env"), []byte("LEVEL=debug\n"), 0o600))
	writeTaskfile(t, tmpDir, `
version: "1"
dotenv: ["base.env", "local.env"]
tasks:
  deploy:
    cmd: ["deploy"]
    environment:
      REGION: us
  report:
    cmd: ["report"]
  nap:
    sleep: 1s
`)

	tf, err := newLoader(t).Load(tmpDir)
	require.NoError(t, err)
	require.Len(t, tf.Tasks, 3)

	assert.Equal(t, map[string]string{"REGION": "us", "LEVEL": "debug"}, tf.Tasks[0].Command.Environment)
	assert.True(t, tf.Tasks[1].Command.IsZero())
	assert.Equal(t, map[string]string{"REGION": "eu", "LEVEL": "debug"}, tf.Tasks[2].Command.Environment)
}
