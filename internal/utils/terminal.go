package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrValueMismatch is returned when a confirmed hidden value is typed
// differently the second time.
var ErrValueMismatch = errors.New("values do not match")

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadHiddenConfirmed prompts on stderr and reads a value twice with echo
// disabled. It fails when stdin is not a terminal, and with ErrValueMismatch
// unless both entries are identical and non-empty.
func ReadHiddenConfirmed(prompt, confirmPrompt string) ([]byte, error) {
	first, err := readHidden(os.Stderr, prompt)
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, fmt.Errorf("no value entered")
	}
	second, err := readHidden(os.Stderr, confirmPrompt)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, ErrValueMismatch
	}
	return first, nil
}

func readHidden(out io.Writer, prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read secret: stdin is not a terminal")
	}

	fmt.Fprint(out, prompt)
	value, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	return value, nil
}
