package reset

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TerminalInput reads a password from a terminal without echoing it,
// asking for a second entry when confirm is requested and failing the
// Get call if the two don't match. This is the production
// implementation of PasswordSource; tests use a canned source instead.
type TerminalInput struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalInput returns a TerminalInput reading from stdin and
// writing prompts to stdout.
func NewTerminalInput() *TerminalInput {
	return &TerminalInput{In: os.Stdin, Out: os.Stdout}
}

// Get prompts on Out and reads a password from In. When In is a
// terminal it reads echoless via term.ReadPassword; otherwise it falls
// back to a plain line read (e.g. when stdin is piped, such as in a
// scripted run).
func (t *TerminalInput) Get(prompt string, confirm bool) (string, bool) {
	fmt.Fprint(t.Out, prompt)
	pw, ok := t.readLine()
	if !ok || pw == "" {
		fmt.Fprintln(t.Out)
		return "", false
	}
	fmt.Fprintln(t.Out)

	if confirm {
		fmt.Fprint(t.Out, "Confirm password: ")
		confirmPw, ok := t.readLine()
		fmt.Fprintln(t.Out)
		if !ok || pw != confirmPw {
			return "", false
		}
	}

	return pw, true
}

func (t *TerminalInput) readLine() (string, bool) {
	fd := int(t.In.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		if err != nil {
			return "", false
		}
		return string(data), true
	}

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, true
}

// CannedInput is a PasswordSource for tests: it returns the next value
// from Values on each Get call, or ("", false) once exhausted.
type CannedInput struct {
	Values []string
	calls  int
}

func (c *CannedInput) Get(string, bool) (string, bool) {
	if c.calls >= len(c.Values) {
		return "", false
	}
	v := c.Values[c.calls]
	c.calls++
	return v, v != ""
}
