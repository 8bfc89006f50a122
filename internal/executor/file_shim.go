package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Fixture is the canned result for one command name.
//
// Output may be a JSON string (used verbatim) or any other JSON value (used
// as its compact encoding). Error is "", "execution" or "script".
type Fixture struct {
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
	Detail string          `json:"detail,omitempty"`
}

type fixtureFile struct {
	Commands map[string]Fixture `json:"commands"`
}

// FileShim is an Executor that replays fixtures from a file instead of
// spawning PowerShell. Commands without a fixture succeed with empty output,
// which reads as "no records" for queries and as success for mutations.
type FileShim struct {
	filePath string
	logger   zerolog.Logger

	mu       sync.RWMutex
	fixtures map[string]Fixture
	calls    []Command
}

// Ensure FileShim implements Executor.
var _ Executor = (*FileShim)(nil)

// NewFileShim loads fixtures from filePath. A missing file yields an empty
// shim; an empty path skips loading.
func NewFileShim(filePath string, logger zerolog.Logger) (*FileShim, error) {
	f := &FileShim{
		filePath: filePath,
		logger:   logger,
		fixtures: make(map[string]Fixture),
	}
	if filePath == "" {
		return f, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading fixture file: %w", err)
	}

	var file fixtureFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing fixture file: %w", err)
	}
	for name, fx := range file.Commands {
		if err := checkFixture(name, fx); err != nil {
			return nil, err
		}
		f.fixtures[name] = fx
	}

	return f, nil
}

func checkFixture(name string, fx Fixture) error {
	switch fx.Error {
	case "", "execution", "script":
		return nil
	default:
		return fmt.Errorf("fixture %q: unknown error kind %q", name, fx.Error)
	}
}

// Set replaces the fixture for a command name.
func (f *FileShim) Set(name string, fx Fixture) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixtures[name] = fx
}

// SetOutput is shorthand for a successful fixture returning output verbatim.
func (f *FileShim) SetOutput(name, output string) {
	raw, _ := json.Marshal(output)
	f.Set(name, Fixture{Output: raw})
}

// Calls returns the commands executed so far, oldest first.
func (f *FileShim) Calls() []Command {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Execute returns the fixture for cmd.Name.
func (f *FileShim) Execute(ctx context.Context, cmd Command) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewExecutionFailed(cmd.Name, err.Error())
	}

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	fx, ok := f.fixtures[cmd.Name]
	f.mu.Unlock()

	if !ok {
		f.logger.Debug().Str("command", cmd.Name).Msg("no fixture, returning empty output")
		return "", nil
	}

	switch fx.Error {
	case "execution":
		return "", NewExecutionFailed(cmd.Name, fx.Detail)
	case "script":
		return "", NewScriptError(cmd.Name, fx.Detail)
	}

	return fixtureOutput(fx.Output), nil
}

func fixtureOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
