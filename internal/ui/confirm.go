package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// Stdio prompts on the process terminal.
func Stdio() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", StyleWarning.Render(prompt))
	return p.readYes()
}

// ConfirmDanger is like Confirm but styled for irreversible actions.
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return p.readYes()
}

func (p *Prompter) readYes() bool {
	line, _ := bufio.NewReader(p.In).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
