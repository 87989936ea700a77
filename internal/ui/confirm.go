// Package ui provides the installer's confirmation prompt. Interactive
// frontends are tried in order and any failure falls through to a plain
// stdin prompt, so the wizard works on dumb terminals too.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

const (
	BackendAuto  = "auto"
	BackendHuh   = "huh"
	BackendTView = "tview"
	BackendPlain = "plain"
)

func backendCandidates(backend string) []string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendHuh:
		return []string{BackendHuh, BackendTView, BackendPlain}
	case BackendTView:
		return []string{BackendTView, BackendHuh, BackendPlain}
	case BackendPlain:
		return []string{BackendPlain}
	default:
		return []string{BackendHuh, BackendTView, BackendPlain}
	}
}

// Confirm asks a yes/no question, returning defaultYes when the user just
// hits enter on the plain fallback.
func Confirm(message string, defaultYes bool) (bool, error) {
	return ConfirmWith(BackendAuto, os.Stdin, os.Stdout, message, defaultYes)
}

func ConfirmWith(backend string, stdin io.Reader, stdout io.Writer, message string, defaultYes bool) (bool, error) {
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			approved bool
			err      error
		)
		switch candidate {
		case BackendHuh:
			approved, err = confirmWithHuh(message, defaultYes)
		case BackendTView:
			approved, err = confirmWithTView(message)
		case BackendPlain:
			approved, err = confirmWithPlain(stdin, stdout, message, defaultYes)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return approved, nil
	}
	return false, firstErr
}

func confirmWithHuh(message string, defaultYes bool) (bool, error) {
	approved := defaultYes
	prompt := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&approved).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView(message string) (bool, error) {
	app := tview.NewApplication()
	approved := false
	done := false

	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			done = true
			approved = strings.EqualFold(strings.TrimSpace(label), "yes")
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	return approved, nil
}

func confirmWithPlain(stdin io.Reader, stdout io.Writer, message string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	fmt.Fprintf(stdout, "%s [%s]: ", message, hint)

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return defaultYes, nil
		}
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return defaultYes, nil
	}
	return answer == "y" || answer == "yes", nil
}
