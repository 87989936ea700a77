// Package highlight renders explanation markdown for the terminal.
// Best-effort cosmetics only: any failure degrades silently to plain text.
package highlight

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Renderer struct {
	disabled bool
	logger   *slog.Logger
}

func New(disabled bool, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{disabled: disabled, logger: logger}
}

// Render returns the terminal-styled text, or the input unchanged when
// highlighting is disabled or the renderer cannot be built. Never fails.
func (r *Renderer) Render(text string) string {
	if r.disabled {
		return text
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		r.logger.Debug("highlighter unavailable", "err", err)
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		r.logger.Debug("highlighting failed", "err", err)
		return text
	}
	return strings.Trim(out, "\n")
}
