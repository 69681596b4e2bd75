package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Result is the outcome of executing one tool call. Content carries either
// the serialized payload or a human-readable diagnostic, never both.
type Result struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// Executor invokes named capabilities with model-supplied arguments.
// Failures of any kind become error results — a bad tool call must not
// take down the rest of the turn.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration
}

func NewExecutor(registry *Registry, logger *slog.Logger, timeout time.Duration) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, logger: logger, timeout: timeout}
}

// Execute runs one tool call and normalizes the outcome. The returned
// result always echoes the call's correlation ID.
func (e *Executor) Execute(ctx context.Context, callID, name string, args map[string]any) (res Result) {
	res = Result{ToolCallID: callID}

	// A tool handler must never panic past this boundary.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", "tool", name, "panic", r)
			res = errResult(callID, fmt.Sprintf("Error: tool %s failed unexpectedly", name))
		}
	}()

	capability, ok := e.registry.Resolve(name)
	if !ok {
		return errResult(callID, fmt.Sprintf("Tool %s not found.", name))
	}

	if violations := validateArgs(capability.Tool.Parameters, args); len(violations) > 0 {
		return errResult(callID, "Invalid arguments: "+strings.Join(violations, "; "))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := capability.Handler(ctx, args)
	if err != nil {
		e.logger.Warn("tool failed", "tool", name, "err", err)
		return errResult(callID, "Error: "+err.Error())
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return errResult(callID, fmt.Sprintf("Error: serializing %s result: %v", name, err))
	}
	e.logger.Debug("tool executed", "tool", name, "duration", time.Since(start))

	res.Content = string(b)
	return res
}

func errResult(callID, text string) Result {
	return Result{ToolCallID: callID, Content: text, IsError: true}
}
