package backend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// The gh copilot output format is undocumented and styling dependent. These
// markers are the exact byte sequences the CLI emits and are matched
// verbatim; the brittleness to CLI version changes is accepted rather than
// papered over with deeper ANSI parsing.
const (
	copilotSuggestionNeedle = "# Suggestion:"
	copilotPromptRedrawSeq  = "\x0a\x0a\x1b\x37\x1b\x5b\x3f"
	// "Explanation" with the CLI's embedded style reset/bold bytes, then ':'.
	copilotExplanationNeedle = "\x45\x78\x70\x6c\x61\x6e\x61\x74\x69\x6f\x6e\x1b\x5b\x30\x6d\x1b\x5b\x31\x6d\x3a"

	copilotNoSuggestionMarker = "Suggestion not readily available. Please revise for better results."
	copilotNoAnswer           = "No answer from GitHub CoPilot."

	ghOAuthMissingMarker    = "Error: No valid OAuth token detected"
	ghUnknownCommandMarker  = `unknown command "copilot" for "gh"`
	ghNotLoggedInMarker     = "You are not logged into any GitHub hosts"
	ghAuthRemedy            = "Authenticate with github first: gh auth login --web -h github.com"
	ghExtensionRemedy       = "Install github copilot extension first: gh extension install github/gh-copilot"
	copilotRequestTimeout   = 30 * time.Second
	copilotChildReapTimeout = 5 * time.Second
)

// Blank styled lines the CLI pads explanations with, anchored at the ANSI
// reset sequence.
var copilotLeadingBlankRe = regexp.MustCompile(`^\x1b\[0m( +\n)*`)

// CopilotBackend shells out to the GitHub Copilot CLI and isolates the
// answer from its decorated terminal output.
type CopilotBackend struct {
	logger  *slog.Logger
	ghPath  string
	timeout time.Duration
}

func NewCopilot(logger *slog.Logger) *CopilotBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CopilotBackend{logger: logger, ghPath: "gh", timeout: copilotRequestTimeout}
}

func (b *CopilotBackend) Name() string { return "copilot" }

func (b *CopilotBackend) CheckPrerequisites() error {
	cmd := exec.Command(b.ghPath, "version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		b.logger.Error("gh not found or not working", "err", err)
		return &PrerequisiteError{
			Remedy: `echo "` + MissingPrerequisites + ` Install GitHub CLI first by following https://github.com/cli/cli#installation"`,
		}
	}
	return nil
}

func (b *CopilotBackend) Generate(ctx context.Context, prompt string) (string, error) {
	stdout, stderr, err := b.runGH(ctx, nil, "copilot", "suggest", "-t", "shell", prompt)
	if err != nil {
		return "", err
	}
	if err := b.classifyStderr(stderr); err != nil {
		return "", err
	}
	if strings.Contains(stdout, copilotNoSuggestionMarker) {
		b.logger.Warn("copilot returned no suggestion")
		return copilotNoAnswer, nil
	}

	out := stdout
	if idx := strings.Index(out, copilotSuggestionNeedle); idx != -1 {
		out = out[idx+len(copilotSuggestionNeedle):]
	}
	if idx := strings.Index(out, copilotPromptRedrawSeq); idx != -1 {
		out = out[:idx]
	}
	out = strings.TrimSpace(out)

	// Something failed silently upstream.
	if out == "" && stderr != "" {
		return "", &RequestError{Message: stderr}
	}
	return out, nil
}

func (b *CopilotBackend) Explain(ctx context.Context, command string) (string, error) {
	// Forced color keeps the styled Explanation marker present in the
	// captured output.
	stdout, stderr, err := b.runGH(ctx, []string{"CLICOLOR_FORCE=1"}, "copilot", "explain", command)
	if err != nil {
		return "", err
	}
	if err := b.classifyStderr(stderr); err != nil {
		return "", err
	}
	if strings.Contains(stdout, copilotNoSuggestionMarker) {
		b.logger.Warn("copilot returned no explanation")
		return copilotNoAnswer, nil
	}

	out := stdout
	if idx := strings.Index(out, copilotExplanationNeedle); idx != -1 {
		out = out[idx+len(copilotExplanationNeedle):]
	}
	out = copilotLeadingBlankRe.ReplaceAllString(out, "\x1b[0m")
	out = strings.TrimSpace(out)

	if out == "" && stderr != "" {
		return "", &RequestError{Message: stderr}
	}
	return out, nil
}

// runGH runs the CLI under a hard wall-clock deadline. On timeout the child
// is killed, not asked to stop, and reaped before the error surfaces. A
// non-zero exit is not itself an error: classification reads stderr.
func (b *CopilotBackend) runGH(ctx context.Context, extraEnv []string, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.ghPath, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Covers a killed child whose grandchildren still hold the pipes open.
	cmd.WaitDelay = copilotChildReapTimeout

	runErr := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		b.logger.Error("copilot request timed out", "after", b.timeout)
		return "", "", &TimeoutError{After: b.timeout}
	}
	if runErr != nil {
		b.logger.Debug("gh exited non-zero", "err", runErr)
	}
	return stdout.String(), stderr.String(), nil
}

// classifyStderr maps the CLI's failure chatter to typed errors, in priority
// order: missing OAuth token, then missing copilot extension (which is
// re-checked against auth status, since an extension error on a logged-out
// host is really an auth problem).
func (b *CopilotBackend) classifyStderr(stderr string) error {
	if strings.Contains(stderr, ghOAuthMissingMarker) {
		b.logger.Error("copilot authentication failed: no valid OAuth token")
		return &AuthRequiredError{Remedy: MissingPrerequisites + " " + ghAuthRemedy}
	}
	if strings.Contains(stderr, ghUnknownCommandMarker) {
		if b.notLoggedIn() {
			b.logger.Error("not authenticated with GitHub")
			return &AuthRequiredError{Remedy: MissingPrerequisites + " " + ghAuthRemedy}
		}
		b.logger.Error("copilot extension not found")
		return &ExtensionMissingError{Remedy: MissingPrerequisites + " " + ghExtensionRemedy}
	}
	return nil
}

func (b *CopilotBackend) notLoggedIn() bool {
	cmd := exec.Command(b.ghPath, "auth", "status")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()
	return strings.Contains(stderr.String(), ghNotLoggedInMarker)
}
