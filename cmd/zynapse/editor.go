package main

import (
	"os"
	"os/exec"
	"strings"

	"zynapse/internal/zerrors"
)

// editInEditor writes initial content to a temp file, runs the
// configured editor on it, and returns the edited text.
func editInEditor(editor, initial string) (string, error) {
	if editor == "" {
		return "", zerrors.CLI("no editor configured (set cli.editor or $EDITOR)")
	}

	tmp, err := os.CreateTemp("", "zynapse-*.md")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(initial); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	// Respect editors with arguments, e.g. "code --wait".
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", zerrors.CLI("editor %s failed: %v", parts[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
