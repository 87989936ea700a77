package main

import (
	"fmt"
	"os"

	"github.com/cearley/zsh-llm-suggestions/internal/backend"
	"github.com/cearley/zsh-llm-suggestions/internal/config"
	"github.com/cearley/zsh-llm-suggestions/internal/highlight"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("ERROR: Mode argument required (generate or explain)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
	}
	logger := config.NewLogger(cfg)

	b := backend.NewOpenAI(cfg.OpenAI, highlight.New(cfg.Highlight.Disabled, logger), logger)
	os.Exit(backend.Run(b, os.Args[1], os.Stdin, os.Stdout, logger))
}
