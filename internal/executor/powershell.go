package executor

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/bcnelson/sentinelguard/internal/metrics"
	"github.com/rs/zerolog"
)

// PowerShell runs commands through a hidden, non-interactive PowerShell.
type PowerShell struct {
	shell   string
	timeout time.Duration
	logger  zerolog.Logger
}

// Ensure PowerShell implements Executor.
var _ Executor = (*PowerShell)(nil)

// NewPowerShell creates an executor using the given shell binary
// ("powershell" or "pwsh"). A zero timeout disables the per-call deadline.
func NewPowerShell(shell string, timeout time.Duration, logger zerolog.Logger) *PowerShell {
	if shell == "" {
		shell = "powershell"
	}
	return &PowerShell{shell: shell, timeout: timeout, logger: logger}
}

// Execute runs cmd.Script and returns trimmed stdout.
func (p *PowerShell) Execute(ctx context.Context, cmd Command) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := p.run(ctx, cmd)
	elapsed := time.Since(start)

	metrics.ExecutorDuration.WithLabelValues(cmd.Name, metrics.ObserveResult(err)).Observe(elapsed.Seconds())

	if err != nil {
		p.logger.Warn().Err(err).Str("command", cmd.Name).Dur("elapsed", elapsed).Msg("privileged command failed")
		return "", err
	}

	p.logger.Debug().Str("command", cmd.Name).Dur("elapsed", elapsed).Int("bytes", len(out)).Msg("privileged command completed")
	return out, nil
}

func (p *PowerShell) run(ctx context.Context, cmd Command) (string, error) {
	c := exec.CommandContext(ctx, p.shell,
		"-NoProfile",
		"-NonInteractive",
		"-WindowStyle", "Hidden",
		"-Command",
		cmd.Script,
	)
	hideWindow(c)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Start(); err != nil {
		return "", NewExecutionFailed(cmd.Name, err.Error())
	}

	if err := c.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", NewExecutionFailed(cmd.Name, ctx.Err().Error())
		}

		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", NewScriptError(cmd.Name, detail)
	}

	return strings.TrimSpace(stdout.String()), nil
}
