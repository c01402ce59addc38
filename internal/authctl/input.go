package authctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompter reads secrets from the terminal without echo, or line by line
// when stdin is redirected.
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	stdinF func() int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:     bufio.NewReader(in),
		out:    out,
		stdinF: func() int { return int(os.Stdin.Fd()) },
	}
}

// password prints prompt to out and reads one password. The returned slice
// should be wiped by the caller.
func (p *prompter) password(prompt string) ([]byte, error) {
	fd := p.stdinF()
	if !isTerminal(fd) {
		line, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}
