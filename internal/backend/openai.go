package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/cearley/zsh-llm-suggestions/internal/config"
	"github.com/cearley/zsh-llm-suggestions/internal/highlight"
)

const openAIGenerateSystem = `You are a zsh shell expert, please write a ZSH command that solves my problem.
You should only output the completed command, no need to include any other explanation.`

const openAIExplainSystem = `You are a zsh shell expert, please briefly explain how the given command works. Be as concise as possible. Use Markdown syntax for formatting.`

// Responses are free-form: sometimes a bare command, sometimes prose around a
// fenced block. Regex stripping handles both shapes uniformly; structural
// markdown parsing is deliberately avoided.
var (
	fenceOpenRe  = regexp.MustCompile("(?m)^```(?:zsh|sh)?\\s*\n?")
	fenceCloseRe = regexp.MustCompile("(?m)\n?^```\\s*$")
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// OpenAIBackend calls a hosted chat-completions API with a fixed system
// prompt per mode.
type OpenAIBackend struct {
	cfg         config.OpenAIConfig
	highlighter *highlight.Renderer
	logger      *slog.Logger
	client      *chatClient
}

func NewOpenAI(cfg config.OpenAIConfig, highlighter *highlight.Renderer, logger *slog.Logger) *OpenAIBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if highlighter == nil {
		highlighter = highlight.New(true, logger)
	}
	return &OpenAIBackend{cfg: cfg, highlighter: highlighter, logger: logger}
}

func (b *OpenAIBackend) Name() string { return "openai" }

// CheckPrerequisites verifies the API key variable is set and caches an
// authenticated client for the single request that follows.
func (b *OpenAIBackend) CheckPrerequisites() error {
	apiKey, ok := os.LookupEnv(b.cfg.APIKeyEnv)
	if !ok || apiKey == "" {
		return &PrerequisiteError{
			Remedy: fmt.Sprintf(`echo "%s %s is not set." && export %s="<copy from https://platform.openai.com/api-keys>"`,
				MissingPrerequisites, b.cfg.APIKeyEnv, b.cfg.APIKeyEnv),
		}
	}
	b.client = newChatClient(b.cfg.BaseURL, b.cfg.Model, apiKey, b.cfg.Timeout())
	return nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	content, err := b.client.complete(ctx, openAIGenerateSystem, prompt)
	if err != nil {
		return "", err
	}
	command := stripCodeFences(content)
	b.syntaxCheck(command)
	return command, nil
}

func (b *OpenAIBackend) Explain(ctx context.Context, command string) (string, error) {
	content, err := b.client.complete(ctx, openAIExplainSystem, command)
	if err != nil {
		return "", err
	}
	return b.highlighter.Render(content), nil
}

func stripCodeFences(s string) string {
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = fenceCloseRe.ReplaceAllString(s, "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// syntaxCheck flags commands that do not parse as shell. Debug telemetry
// only; the command is returned to the user either way.
func (b *OpenAIBackend) syntaxCheck(command string) {
	if command == "" || !b.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(command), ""); err != nil {
		b.logger.Debug("generated command did not parse as shell", "err", err)
	}
}
