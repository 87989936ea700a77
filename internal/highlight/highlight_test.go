package highlight

import (
	"strings"
	"testing"
)

func TestRenderDisabledReturnsInputUnchanged(t *testing.T) {
	r := New(true, nil)
	text := "# Heading\n\n`ls -la` lists files."
	if got := r.Render(text); got != text {
		t.Fatalf("disabled renderer must not touch text, got %q", got)
	}
}

func TestRenderNeverFails(t *testing.T) {
	r := New(false, nil)
	inputs := []string{
		"plain text",
		"# markdown\n\n- item\n- item",
		"```zsh\nls\n```",
		"",
		"\x1b[0m already styled",
	}
	for _, input := range inputs {
		got := r.Render(input)
		if input != "" && strings.TrimSpace(got) == "" {
			t.Fatalf("render dropped all content for %q", input)
		}
	}
}
