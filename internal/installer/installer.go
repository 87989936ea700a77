// Package installer edits the user's shell startup file. All edits live
// between BEGIN/END marker blocks, every edit is preceded by a timestamped
// backup, and writes are atomic (temp file + rename).
package installer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cearley/zsh-llm-suggestions/internal/appdirs"
	"github.com/cearley/zsh-llm-suggestions/internal/ui"
)

const (
	sourceBlock      = "zsh-llm-suggestions"
	keybindingsBlock = "zsh-llm-suggestions-keybindings"
)

var keyBindings = []string{
	"bindkey '^o' zsh_llm_suggestions_openai",
	"bindkey '^xo' zsh_llm_suggestions_openai_explain",
	"bindkey '^p' zsh_llm_suggestions_github_copilot",
	"bindkey '^xp' zsh_llm_suggestions_github_copilot_explain",
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Installer runs the interactive install/uninstall/status flows. The confirm
// function is injectable so tests can script the wizard.
type Installer struct {
	version string
	out     io.Writer
	confirm func(message string, defaultYes bool) (bool, error)
}

func New(version string) *Installer {
	return &Installer{version: version, out: os.Stdout, confirm: ui.Confirm}
}

func (i *Installer) printf(format string, args ...any) {
	fmt.Fprintf(i.out, format+"\n", args...)
}

func (i *Installer) ok(format string, args ...any) {
	i.printf("%s %s", okStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func (i *Installer) warn(format string, args ...any) {
	i.printf("%s %s", warnStyle.Render("!"), fmt.Sprintf(format, args...))
}

func (i *Installer) fail(format string, args ...any) {
	i.printf("%s %s", errStyle.Render("✗"), fmt.Sprintf(format, args...))
}

func (i *Installer) banner(action string) {
	i.printf("%s %s %s", appdirs.AppName, i.version, action)
	i.printf("%s", dimStyle.Render(strings.Repeat("=", 50)))
	i.printf("")
}

// Install copies the widget script into place and offers to wire the shell
// config: a source line first, key bindings second, each inside its own
// marker block.
func (i *Installer) Install() error {
	i.banner("installer")

	installDir, err := appdirs.InstallDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return fmt.Errorf("could not create install dir: %w", err)
	}

	scriptPath := filepath.Join(installDir, ScriptName)
	if err := os.WriteFile(scriptPath, []byte(widgetScript), 0o644); err != nil {
		return fmt.Errorf("could not write zsh script: %w", err)
	}
	i.ok("Installed zsh script to: %s", scriptPath)
	i.printf("")

	rcPath, err := appdirs.ShellConfigPath()
	if err != nil {
		return err
	}
	sourceLine := "source " + scriptPath

	if rcPath == "" || !fileExists(rcPath) {
		i.warn("Could not detect shell config file.")
		i.printf("  Please manually add this line to your ~/.zshrc or ~/.bashrc:")
		i.printf("  %s", sourceLine)
		return nil
	}

	sourceAdded, err := i.ensureBlock(rcPath, sourceBlock, []string{sourceLine},
		fmt.Sprintf("Add source line to %s?", rcPath))
	if err != nil {
		return err
	}
	if !sourceAdded {
		i.printf("")
		i.warn("Please manually add this line to your shell config:")
		i.printf("  %s", sourceLine)
		return nil
	}

	i.printf("")
	bindingsAdded, err := i.ensureBlock(rcPath, keybindingsBlock, keyBindings,
		fmt.Sprintf("Configure key bindings in %s?", rcPath))
	if err != nil {
		return err
	}
	if bindingsAdded {
		i.ok("Key bindings configured:")
		i.printf("  Ctrl+O        OpenAI suggestion")
		i.printf("  Ctrl+X then O OpenAI explanation")
		i.printf("  Ctrl+P        Copilot suggestion")
		i.printf("  Ctrl+X then P Copilot explanation")
	} else {
		i.printf("")
		i.warn("Please manually add key bindings to your shell config:")
		for _, binding := range keyBindings {
			i.printf("  %s", binding)
		}
	}

	i.printf("")
	i.printf("Restart your shell or run:")
	i.printf("  source %s", rcPath)
	i.printf("")
	i.ok("Installation complete!")
	return nil
}

// ensureBlock adds the marker block when missing and confirmed. Reports
// whether the block (or an equivalent manual configuration) is present
// afterwards.
func (i *Installer) ensureBlock(rcPath, block string, lines []string, question string) (bool, error) {
	content, err := os.ReadFile(rcPath)
	if err != nil {
		return false, fmt.Errorf("could not read %s: %w", rcPath, err)
	}

	if hasBlockMarkers(string(content), block) || containsAllLines(string(content), lines) {
		i.ok("Already configured in %s", rcPath)
		return true, nil
	}

	approved, err := i.confirm(question, false)
	if err != nil {
		return false, err
	}
	if !approved {
		return false, nil
	}

	if backupPath, err := createBackup(rcPath); err != nil {
		i.warn("Could not create backup: %v", err)
	} else {
		i.printf("  backup: %s", backupPath)
	}

	updated := appendBlock(string(content), block, lines)
	if err := atomicWrite(rcPath, updated); err != nil {
		return false, fmt.Errorf("could not update %s: %w", rcPath, err)
	}
	i.ok("Added to %s", rcPath)
	return true, nil
}

// Uninstall removes the installed script and offers to strip both marker
// blocks from the shell config.
func (i *Installer) Uninstall() error {
	i.banner("uninstaller")

	installDir, err := appdirs.InstallDir()
	if err != nil {
		return err
	}
	if !fileExists(installDir) {
		i.printf("No installation found.")
		return nil
	}

	scriptPath := filepath.Join(installDir, ScriptName)
	if fileExists(scriptPath) {
		if err := os.Remove(scriptPath); err != nil {
			return fmt.Errorf("could not remove script: %w", err)
		}
		i.ok("Removed: %s", scriptPath)
	}
	if err := os.Remove(installDir); err == nil {
		i.ok("Removed directory: %s", installDir)
	} else {
		i.printf("Directory not empty: %s", installDir)
	}

	rcPath, err := appdirs.ShellConfigPath()
	if err != nil {
		return err
	}
	if rcPath == "" || !fileExists(rcPath) {
		i.printf("")
		i.ok("Uninstallation complete!")
		return nil
	}

	sourceLine := "source " + scriptPath
	if err := i.removeConfigured(rcPath, sourceBlock, []string{sourceLine},
		fmt.Sprintf("Remove source line from %s?", rcPath)); err != nil {
		return err
	}
	if err := i.removeConfigured(rcPath, keybindingsBlock, keyBindings,
		fmt.Sprintf("Remove key bindings from %s?", rcPath)); err != nil {
		return err
	}

	i.printf("")
	i.ok("Uninstallation complete!")
	return nil
}

func (i *Installer) removeConfigured(rcPath, block string, lines []string, question string) error {
	content, err := os.ReadFile(rcPath)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", rcPath, err)
	}

	text := string(content)
	if !hasBlockMarkers(text, block) && !containsAnyLine(text, lines) {
		return nil
	}

	approved, err := i.confirm(question, false)
	if err != nil {
		return err
	}
	if !approved {
		return nil
	}

	if backupPath, err := createBackup(rcPath); err != nil {
		i.warn("Could not create backup: %v", err)
	} else {
		i.printf("  backup: %s", backupPath)
	}

	var updated string
	if hasBlockMarkers(text, block) {
		updated = removeBlock(text, block)
	} else {
		// Legacy installs wrote bare lines without markers.
		updated = removeLines(text, lines)
	}
	if err := atomicWrite(rcPath, updated); err != nil {
		return fmt.Errorf("could not update %s: %w", rcPath, err)
	}
	i.ok("Removed from %s", rcPath)
	return nil
}

// Status reports binary availability, script presence, and shell config
// wiring.
func (i *Installer) Status() error {
	i.banner("status")

	i.printf("Command status:")
	for _, binary := range []string{"zsh-llm-openai", "zsh-llm-copilot"} {
		if _, err := exec.LookPath(binary); err == nil {
			i.ok("%s available", binary)
		} else {
			i.fail("%s not found", binary)
		}
	}
	i.printf("")

	installDir, err := appdirs.InstallDir()
	if err != nil {
		return err
	}
	scriptPath := filepath.Join(installDir, ScriptName)

	i.printf("Installation status:")
	if fileExists(scriptPath) {
		i.ok("zsh script: %s", scriptPath)
	} else {
		i.fail("zsh script not found at %s", scriptPath)
	}

	rcPath, err := appdirs.ShellConfigPath()
	if err != nil {
		return err
	}
	if rcPath != "" && fileExists(rcPath) {
		content, err := os.ReadFile(rcPath)
		if err != nil {
			return fmt.Errorf("could not read %s: %w", rcPath, err)
		}
		if strings.Contains(string(content), scriptPath) {
			i.ok("Configured in %s", rcPath)
		} else {
			i.warn("Not configured in %s", rcPath)
		}
	}
	return nil
}

func hasBlockMarkers(content, block string) bool {
	return strings.Contains(content, "# BEGIN "+block) &&
		strings.Contains(content, "# END "+block)
}

func appendBlock(content, block string, lines []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(content, "\n"))
	b.WriteString("\n\n# BEGIN " + block + "\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteString("# END " + block + "\n")
	return b.String()
}

func removeBlock(content, block string) string {
	beginMarker := "# BEGIN " + block
	endMarker := "# END " + block

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	inBlock := false
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case beginMarker:
			inBlock = true
			continue
		case endMarker:
			inBlock = false
			continue
		}
		if !inBlock {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func removeLines(content string, drop []string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if containsAnyLine(line, drop) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func containsAllLines(content string, lines []string) bool {
	for _, line := range lines {
		if !strings.Contains(content, line) {
			return false
		}
	}
	return len(lines) > 0
}

func containsAnyLine(content string, lines []string) bool {
	for _, line := range lines {
		if strings.Contains(content, line) {
			return true
		}
	}
	return false
}

func createBackup(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().UTC().Format("20060102_150405"))
	if err := os.WriteFile(backupPath, content, 0o600); err != nil {
		return "", err
	}
	return backupPath, nil
}

// atomicWrite stages the content in a temp file in the same directory, then
// renames it over the target so readers never see a partial rc file.
func atomicWrite(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
