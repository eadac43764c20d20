// Package prompt asks the user questions on a terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer answers yes/no questions before destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Static always gives the same answer, for --yes flags and tests.
type Static bool

func (s Static) Confirm(context.Context, string) (bool, error) { return bool(s), nil }

// Terminal reads answers from in and writes questions to out.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, reader: bufio.NewReader(in)}
}

// Confirm prints question with a [y/N] suffix. Anything but y/yes is no.
func (t *Terminal) Confirm(_ context.Context, question string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	line, err := t.line()
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Line prints label and reads one line of input.
func (t *Terminal) Line(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	line, err := t.line()
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password reads a secret without echo when in is a terminal, otherwise it
// reads a plain line (pipes, tests).
func (t *Terminal) Password(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := t.line()
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) line() (string, error) {
	line, err := t.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
