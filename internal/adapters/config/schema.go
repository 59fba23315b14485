package config

import (
	"github.com/google/shlex"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Taskfile represents the structure of the tasker.yaml configuration file.
type Taskfile struct {
	Version string             `yaml:"version"`
	Root    string             `yaml:"root"`
	Dotenv  []string           `yaml:"dotenv"`
	Tasks   map[string]TaskDTO `yaml:"tasks"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Description string            `yaml:"description"`
	Cmd         CommandLine       `yaml:"cmd"`
	DependsOn   []string          `yaml:"dependsOn"`
	Environment map[string]string `yaml:"environment"`
	Dir         string            `yaml:"dir"`
	Sleep       string            `yaml:"sleep"`
}

// CommandLine is a command written either as a list of arguments or as one
// string that is split with shell quoting rules.
type CommandLine []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CommandLine) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		args, err := shlex.Split(node.Value)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid command line"), "line", node.Line)
		}
		*c = args
		return nil
	case yaml.SequenceNode:
		var args []string
		if err := node.Decode(&args); err != nil {
			return err
		}
		*c = args
		return nil
	default:
		return zerr.With(zerr.New("cmd must be a string or a list of strings"), "line", node.Line)
	}
}
