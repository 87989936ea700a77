package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// stubGH writes a fake gh executable and returns its path.
func stubGH(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "gh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("could not write stub gh: %v", err)
	}
	return path
}

func stubbedCopilot(t *testing.T, script string) *CopilotBackend {
	t.Helper()
	b := NewCopilot(nil)
	b.ghPath = stubGH(t, script)
	return b
}

func TestCopilotPrerequisitesMissingBinary(t *testing.T) {
	b := NewCopilot(nil)
	b.ghPath = filepath.Join(t.TempDir(), "definitely-not-gh")

	err := b.CheckPrerequisites()
	var prereq *PrerequisiteError
	if !errors.As(err, &prereq) {
		t.Fatalf("expected PrerequisiteError, got %v", err)
	}
	if !strings.Contains(prereq.Remedy, "Install GitHub CLI") {
		t.Fatalf("expected install remedy, got %q", prereq.Remedy)
	}
}

func TestCopilotOAuthMarkerFailsBothModes(t *testing.T) {
	script := `echo "some output"
echo "Error: No valid OAuth token detected" >&2
exit 1`
	b := stubbedCopilot(t, script)

	for _, call := range []func() (string, error){
		func() (string, error) { return b.Generate(context.Background(), "list files") },
		func() (string, error) { return b.Explain(context.Background(), "ls") },
	} {
		_, err := call()
		var auth *AuthRequiredError
		if !errors.As(err, &auth) {
			t.Fatalf("expected AuthRequiredError, got %v", err)
		}
		if !strings.Contains(auth.Remedy, "gh auth login") {
			t.Fatalf("expected login remedy, got %q", auth.Remedy)
		}
	}
}

func TestCopilotMissingExtensionWhenLoggedIn(t *testing.T) {
	script := `if [ "$1" = "auth" ]; then
  echo "Logged in to github.com" >&2
  exit 0
fi
echo 'unknown command "copilot" for "gh"' >&2
exit 1`
	b := stubbedCopilot(t, script)

	_, err := b.Generate(context.Background(), "list files")
	var missing *ExtensionMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected ExtensionMissingError, got %v", err)
	}
	if !strings.Contains(missing.Remedy, "gh extension install github/gh-copilot") {
		t.Fatalf("expected extension remedy, got %q", missing.Remedy)
	}
}

func TestCopilotMissingExtensionWhenLoggedOut(t *testing.T) {
	script := `if [ "$1" = "auth" ]; then
  echo "You are not logged into any GitHub hosts" >&2
  exit 1
fi
echo 'unknown command "copilot" for "gh"' >&2
exit 1`
	b := stubbedCopilot(t, script)

	_, err := b.Generate(context.Background(), "list files")
	var auth *AuthRequiredError
	if !errors.As(err, &auth) {
		t.Fatalf("expected AuthRequiredError for logged-out host, got %v", err)
	}
}

func TestCopilotNoSuggestionFallback(t *testing.T) {
	script := `echo "Suggestion not readily available. Please revise for better results."`
	b := stubbedCopilot(t, script)

	got, err := b.Generate(context.Background(), "do the impossible")
	if err != nil {
		t.Fatalf("expected fallback, got error %v", err)
	}
	if got != copilotNoAnswer {
		t.Fatalf("expected %q, got %q", copilotNoAnswer, got)
	}
}

func TestCopilotGenerateExtractsSuggestion(t *testing.T) {
	script := `printf 'Welcome to GitHub Copilot CLI!\n\n# Suggestion:\n\n  git status\n\n\0337\033[?25l prompt redraw junk'`
	b := stubbedCopilot(t, script)

	got, err := b.Generate(context.Background(), "show repo state")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "git status" {
		t.Fatalf("expected extracted suggestion, got %q", got)
	}
}

func TestCopilotExplainExtractsAfterStyledNeedle(t *testing.T) {
	script := `printf 'banner\nExplanation\033[0m\033[1m:\033[0m  \n\nThe ls command lists files.\n'`
	b := stubbedCopilot(t, script)

	got, err := b.Explain(context.Background(), "ls")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if !strings.Contains(got, "lists files") {
		t.Fatalf("expected explanation content, got %q", got)
	}
	if strings.Contains(got, "banner") {
		t.Fatalf("expected banner stripped, got %q", got)
	}
}

func TestCopilotEmptyOutputWithStderrFails(t *testing.T) {
	script := `echo "something broke upstream" >&2`
	b := stubbedCopilot(t, script)

	_, err := b.Generate(context.Background(), "list files")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if !strings.Contains(reqErr.Error(), "something broke upstream") {
		t.Fatalf("expected stderr carried in error, got %q", reqErr.Error())
	}
}

func TestCopilotTimeoutKillsChild(t *testing.T) {
	script := `sleep 30`
	b := stubbedCopilot(t, script)
	b.timeout = 200 * time.Millisecond

	start := time.Now()
	_, err := b.Generate(context.Background(), "hang forever")
	elapsed := time.Since(start)

	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if elapsed > 10*time.Second {
		t.Fatalf("child was not killed promptly, took %v", elapsed)
	}
}
