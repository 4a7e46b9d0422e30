// Package render provides the terminal implementation of the render target
// activities draw on.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	body = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F8FAFC")).
		Padding(0, 1)

	prompt = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#14B8A6")).
		Bold(true).
		Padding(0, 1)
)

// Terminal renders course content to a writer and reads learner input from a
// reader. It implements course.RenderTarget and the Prompt interface the
// quiz activity asks for.
type Terminal struct {
	out io.Writer
	in  *bufio.Scanner
}

// NewTerminal creates a terminal target on the given writer/reader pair.
func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	return &Terminal{out: out, in: bufio.NewScanner(in)}
}

// Clear empties the screen.
func (t *Terminal) Clear() {
	fmt.Fprint(t.out, "\033[2J\033[H")
}

// Display renders content on the terminal.
func (t *Terminal) Display(content string) {
	fmt.Fprintln(t.out, body.Render(content))
}

// Prompt displays a question and reads one line of learner input.
func (t *Terminal) Prompt(question string) (string, error) {
	fmt.Fprintln(t.out, prompt.Render(question))
	fmt.Fprint(t.out, "> ")
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}
