// Package backend holds the two LLM backends behind a single contract: read
// the shell buffer from stdin, produce exactly one command or explanation on
// stdout, exit 0 or 1. All failure output is a shell-echoable line so the
// calling widget can display it without special cases.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

const (
	ModeGenerate = "generate"
	ModeExplain  = "explain"
)

// Backend is the pluggable strategy both variants implement. Generate turns a
// natural-language prompt into a shell command; Explain does the reverse.
type Backend interface {
	Name() string
	CheckPrerequisites() error
	Generate(ctx context.Context, prompt string) (string, error)
	Explain(ctx context.Context, command string) (string, error)
}

// Run drives one request end to end and returns the process exit code.
// Backends never print or exit themselves; every error they return is
// formatted here, at the single boundary.
func Run(b Backend, mode string, stdin io.Reader, stdout io.Writer, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("backend run", "backend", b.Name(), "mode", mode)
	if mode != ModeGenerate && mode != ModeExplain {
		logger.Error("invalid mode", "mode", mode)
		fmt.Fprintf(stdout, "ERROR: something went wrong in zsh-llm-suggestions, please report a bug. Got unknown mode: %s\n", mode)
		return 1
	}

	// Prerequisites are checked before stdin is consumed so missing setup is
	// reported without eating the buffer.
	if err := b.CheckPrerequisites(); err != nil {
		logger.Error("prerequisites check failed", "err", err)
		fmt.Fprintln(stdout, err.Error())
		return 1
	}

	raw, err := io.ReadAll(stdin)
	if err != nil {
		logger.Error("could not read stdin", "err", err)
		fmt.Fprintf(stdout, "echo \"ERROR: Request failed: %v\"\n", err)
		return 1
	}

	buffer, err := ValidateInput(string(raw))
	if err != nil {
		logger.Error("input validation failed", "err", err)
		fmt.Fprintf(stdout, "echo \"ERROR: Invalid input: %v\"\n", err)
		return 1
	}
	logger.Debug("input validated", "length", len(buffer))

	ctx := context.Background()
	var result string
	if mode == ModeGenerate {
		result, err = b.Generate(ctx, buffer)
	} else {
		result, err = b.Explain(ctx, buffer)
	}
	if err != nil {
		logger.Error("request failed", "mode", mode, "err", err)
		fmt.Fprintf(stdout, "echo \"ERROR: Request failed: %v\"\n", err)
		return 1
	}

	logger.Debug("request succeeded", "length", len(result))
	fmt.Fprintln(stdout, result)
	return 0
}
