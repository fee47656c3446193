package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoAnswer is returned when input ends before a value was given.
var ErrNoAnswer = errors.New("no answer on input")

// Prompter reads answers line by line. Labels are only printed when
// interactive is set, so piped answers work without echoing prompts.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func New(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// IsTerminal reports whether r is a terminal file.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Ask returns the next input line without surrounding space.
func (p *Prompter) Ask(label string) (string, error) {
	if p.interactive {
		if _, err := fmt.Fprint(p.out, label); err != nil {
			return "", err
		}
	}
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", ErrNoAnswer
		}
		err = nil
	}
	if err != nil {
		return "", fmt.Errorf("read %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimSpace(line), nil
}

// Fill asks for value only when it is empty. flag names the option that
// supplies the value without a prompt.
func (p *Prompter) Fill(value *string, label, flag string) error {
	if *value != "" {
		return nil
	}
	answer, err := p.Ask(label)
	if errors.Is(err, ErrNoAnswer) {
		return fmt.Errorf("%w: set --%s", err, flag)
	}
	if err != nil {
		return err
	}
	*value = answer
	return nil
}
