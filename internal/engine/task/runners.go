package task

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"time"

	"go.trai.ch/tasker/internal/core/domain"
	"go.trai.ch/tasker/internal/core/ports"
)

func noop(context.Context, Call) error { return nil }

// Func creates a task that calls fn with the invocation's substitutions.
// It panics when name is not a valid pattern.
func Func(name string, fn func(ctx context.Context, subs domain.Substitutions) error) *Base {
	return MustNew(name, func(ctx context.Context, call Call) error {
		return fn(ctx, call.Substitutions)
	})
}

// Noop creates a task that does nothing. It panics when name is not a valid pattern.
func Noop(name string) *Base {
	return must(newBase(name, noop, []string{"noop"}))
}

// Sleep creates a task that waits for d or until ctx is done.
// It panics when name is not a valid pattern.
func Sleep(name string, d time.Duration) *Base {
	return must(newBase(name, func(ctx context.Context, _ Call) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, []string{"sleep", d.String()}))
}

// Fail creates a task whose work always fails. It panics when name is not a valid pattern.
func Fail(name string) *Base {
	return must(newBase(name, func(context.Context, Call) error {
		return domain.ErrTaskFailed
	}, []string{"fail"}))
}

// Command creates a task that runs cmd through executor.
// Placeholder references in the arguments, environment values and directory
// are rendered with the invocation's substitutions.
func Command(name string, cmd domain.Command, executor ports.Executor) (*Base, error) {
	return newBase(name, func(ctx context.Context, call Call) error {
		return executor.Execute(ctx, cmd.Render(call.Substitutions), call.Stdout, call.Stderr)
	}, commandIdentity(cmd))
}

func commandIdentity(cmd domain.Command) []string {
	identity := make([]string, 0, 6+len(cmd.Args)+len(cmd.Environment))
	identity = append(identity, "cmd", cmd.Dir, "args", strconv.Itoa(len(cmd.Args)))
	identity = append(identity, cmd.Args...)
	identity = append(identity, "env", strconv.Itoa(len(cmd.Environment)))
	for _, k := range slices.Sorted(maps.Keys(cmd.Environment)) {
		identity = append(identity, k+"="+cmd.Environment[k])
	}
	return identity
}

func must(b *Base, err error) *Base {
	if err != nil {
		panic(err)
	}
	return b
}
