//go:generate mockgen -destination=mock_executor.go -package=executor github.com/bcnelson/sentinelguard/internal/executor Executor

// Package executor runs privileged OS queries and mutations.
package executor

import (
	"context"
	"fmt"

	"github.com/bcnelson/sentinelguard/internal/domain"
)

// Command is a privileged query or mutation.
// Name identifies the command for logs, metrics and the file shim; Script is
// opaque to callers.
type Command struct {
	Name   string
	Script string
}

// Executor runs privileged commands and returns their raw structured output.
// Calls can take seconds and commonly fail under insufficient privilege;
// every caller must handle the error.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (string, error)
}

// Kind distinguishes launch failures from failures reported by the command.
type Kind int

const (
	// ExecutionFailed means the subprocess could not be started.
	ExecutionFailed Kind = iota + 1
	// ScriptError means the subprocess ran and reported failure.
	ScriptError
)

// ExecError is returned by executors. Detail carries the diagnostic text
// (stderr or the launch error).
type ExecError struct {
	Kind    Kind
	Command string
	Detail  string
}

func (e *ExecError) Error() string {
	switch e.Kind {
	case ExecutionFailed:
		return fmt.Sprintf("Failed to execute PowerShell (%s): %s", e.Command, e.Detail)
	default:
		return fmt.Sprintf("PowerShell returned error (%s): %s", e.Command, e.Detail)
	}
}

// Is lets errors.Is match the domain sentinels.
func (e *ExecError) Is(target error) bool {
	switch target {
	case domain.ErrExecutionFailed:
		return e.Kind == ExecutionFailed
	case domain.ErrScriptError:
		return e.Kind == ScriptError
	}
	return false
}

// NewExecutionFailed builds a launch failure.
func NewExecutionFailed(command, detail string) *ExecError {
	return &ExecError{Kind: ExecutionFailed, Command: command, Detail: detail}
}

// NewScriptError builds a failure reported by the command.
func NewScriptError(command, detail string) *ExecError {
	return &ExecError{Kind: ScriptError, Command: command, Detail: detail}
}
