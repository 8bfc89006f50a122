package executor

import "context"

// Unavailable is an Executor for hosts that cannot run privileged commands.
// Every call fails with ExecutionFailed so no caller mistakes it for success.
type Unavailable struct {
	reason string
}

// Ensure Unavailable implements Executor.
var _ Executor = (*Unavailable)(nil)

// NewUnavailable creates an executor that fails every command with reason.
func NewUnavailable(reason string) *Unavailable {
	return &Unavailable{reason: reason}
}

// Execute always fails.
func (u *Unavailable) Execute(ctx context.Context, cmd Command) (string, error) {
	return "", NewExecutionFailed(cmd.Name, u.reason)
}
