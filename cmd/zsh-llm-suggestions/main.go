package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cearley/zsh-llm-suggestions/internal/installer"
	"github.com/cearley/zsh-llm-suggestions/internal/update"
)

const version = "1.1.0"

func main() {
	sub := "status"
	if len(os.Args) > 1 {
		sub = os.Args[1]
	}

	var err error
	switch sub {
	case "install":
		err = installer.New(version).Install()
	case "uninstall":
		err = installer.New(version).Uninstall()
	case "status":
		err = status()
	case "update":
		err = checkUpdate()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", sub)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("zsh-llm-suggestions <install|uninstall|status|update>")
}

func status() error {
	if err := installer.New(version).Status(); err != nil {
		return err
	}

	// Best effort: the status display stays useful offline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := update.NewChecker().Check(ctx, version)
	fmt.Println()
	if err != nil {
		fmt.Printf("Update check unavailable: %v\n", err)
		return nil
	}
	printUpdateResult(result)
	return nil
}

func checkUpdate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := update.NewChecker().CheckWithSpinner(ctx, version)
	if err != nil {
		return err
	}
	printUpdateResult(result)
	return nil
}

func printUpdateResult(result update.Result) {
	if result.Newer {
		fmt.Printf("Update available: %s -> %s\n", result.Current, result.Latest)
		if result.URL != "" {
			fmt.Printf("  %s\n", result.URL)
		}
		return
	}
	fmt.Printf("zsh-llm-suggestions %s is up to date\n", result.Current)
}
