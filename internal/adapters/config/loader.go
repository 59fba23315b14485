// Package config provides the configuration loader for tasker.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only taskfile schema version understood by the loader.
const SupportedVersion = "1"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the taskfile at path. When path is a directory, the taskfile is
// searched for in it and then in each parent directory.
func (l *Loader) Load(path string) (*domain.Taskfile, error) {
	configPath, err := findConfiguration(path)
	if err != nil {
		return nil, err
	}

	var file Taskfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	return l.build(configPath, &file)
}

func findConfiguration(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", abs)
	}
	if !info.IsDir() {
		return abs, nil
	}

	currentDir := abs
	for {
		candidate := filepath.Join(currentDir, domain.TaskFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.Tagged(domain.ErrConfigNotFound), "cwd", abs)
}

func (l *Loader) build(configPath string, file *Taskfile) (*domain.Taskfile, error) {
	if file.Version != SupportedVersion {
		return nil, zerr.With(domain.Tagged(domain.ErrUnsupportedVersion), "version", file.Version)
	}

	root := resolveRoot(configPath, file.Root)
	dotenv, err := readDotenv(filepath.Dir(configPath), file.Dotenv)
	if err != nil {
		return nil, err
	}

	out := &domain.Taskfile{
		Root:  root,
		Tasks: make([]domain.TaskDefinition, 0, len(file.Tasks)),
	}

	if len(file.Tasks) == 0 {
		l.Logger.Warn(fmt.Sprintf("%s defines no tasks", configPath))
	}

	for _, name := range slices.Sorted(maps.Keys(file.Tasks)) {
		def, err := buildTask(root, name, file.Tasks[name], dotenv)
		if err != nil {
			return nil, zerr.With(err, "task", name)
		}
		out.Tasks = append(out.Tasks, def)
	}

	return out, nil
}

func buildTask(root, name string, dto TaskDTO, dotenv map[string]string) (domain.TaskDefinition, error) {
	if err := validateTaskName(name); err != nil {
		return domain.TaskDefinition{}, err
	}

	def := domain.TaskDefinition{
		Name:        name,
		Description: dto.Description,
		DependsOn:   slices.Clone(dto.DependsOn),
	}

	if dto.Sleep != "" {
		if len(dto.Cmd) > 0 {
			return domain.TaskDefinition{}, zerr.With(domain.Tagged(domain.ErrInvalidTaskDefinition), "reason", "cmd and sleep are mutually exclusive")
		}
		d, err := time.ParseDuration(dto.Sleep)
		if err != nil || d < 0 {
			return domain.TaskDefinition{}, zerr.With(zerr.With(domain.Tagged(domain.ErrInvalidTaskDefinition), "reason", "invalid sleep duration"), "sleep", dto.Sleep)
		}
		def.Sleep = d
	}

	for _, dep := range dto.DependsOn {
		if dep == "" {
			return domain.TaskDefinition{}, zerr.With(domain.Tagged(domain.ErrInvalidTaskDefinition), "reason", "empty dependency name")
		}
	}

	if len(dto.Cmd) > 0 {
		def.Command = domain.Command{
			Args:        slices.Clone(dto.Cmd),
			Environment: mergeEnvironment(dotenv, dto.Environment),
			Dir:         resolveTaskDir(root, dto.Dir),
		}
	}

	return def, nil
}

// validateTaskName checks if the task name is reserved or not a valid target pattern.
func validateTaskName(name string) error {
	if name == "all" {
		return zerr.With(domain.Tagged(domain.ErrReservedTaskName), "task_name", name)
	}
	if _, err := domain.ParsePattern(name); err != nil {
		return zerr.With(err, "task_name", name)
	}
	return nil
}

// readDotenv reads the dotenv files, relative to configDir, in order.
// Values of later files override earlier ones.
func readDotenv(configDir string, files []string) (map[string]string, error) {
	env := make(map[string]string)
	for _, file := range files {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "dotenv", path)
		}
		maps.Copy(env, values)
	}
	return env, nil
}

// mergeEnvironment layers a task's own environment over the dotenv values.
func mergeEnvironment(dotenv, task map[string]string) map[string]string {
	if len(dotenv) == 0 && len(task) == 0 {
		return nil
	}
	env := maps.Clone(dotenv)
	if env == nil {
		env = make(map[string]string, len(task))
	}
	maps.Copy(env, task)
	return env
}

// resolveRoot returns the directory commands run in by default.
func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// resolveTaskDir resolves a task directory relative to root. Placeholder
// references are kept for rendering at dispatch time.
func resolveTaskDir(root, dir string) string {
	if dir == "" {
		return root
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// readAndUnmarshalYAML reads a YAML file and strictly decodes it into target.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is provided by the user
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
