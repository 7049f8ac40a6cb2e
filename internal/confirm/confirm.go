// Package confirm gates irreversible operator actions behind an explicit
// yes/no question.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Func adapts a function to Confirmer.
type Func func(prompt string) bool

// Confirm calls f.
func (f Func) Confirm(prompt string) bool {
	return f(prompt)
}

// Yes confirms everything (the --yes flag).
var Yes Confirmer = Func(func(string) bool { return true })

// No declines everything.
var No Confirmer = Func(func(string) bool { return false })

// Recorder confirms with a fixed answer and remembers every prompt it saw.
type Recorder struct {
	Answer  bool
	Prompts []string
}

// Confirm records prompt and returns the fixed answer.
func (r *Recorder) Confirm(prompt string) bool {
	r.Prompts = append(r.Prompts, prompt)
	return r.Answer
}

// Terminal asks on a terminal. It uses gum when installed and falls back to
// a plain "[y/N]" prompt.
type Terminal struct {
	In  io.Reader
	Out io.Writer
	// UseGum is resolved by NewTerminal; tests leave it false.
	UseGum bool
}

// NewTerminal returns a Confirmer bound to stdin/stdout.
func NewTerminal() *Terminal {
	_, err := exec.LookPath("gum")
	return &Terminal{In: os.Stdin, Out: os.Stdout, UseGum: err == nil}
}

// Confirm asks prompt and reports whether the operator agreed.
func (t *Terminal) Confirm(prompt string) bool {
	if t.UseGum {
		return runGumConfirm(prompt)
	}

	fmt.Fprintf(t.Out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// gum exits 0 for "yes" and 1 for "no".
func runGumConfirm(prompt string) bool {
	cmd := exec.Command("gum", "confirm", prompt)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	return cmd.Run() == nil
}
