package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Code formats runnable commands. Yellow, or `backticks` without color.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file or directory paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats user values such as emails and secret titles.
	// Cyan, or 'single quotes' without color.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats ids and other secondary text. Gray, or (parentheses)
	// without color.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}

	// Secret formats a decrypted value. Bold, or <angle brackets> without
	// color so surrounding whitespace stays visible.
	Secret = Formatter{color.New(color.Bold), "<", ">"}
)

// Status colors a share or request status by outcome, padded to width.
// Unknown statuses are left uncolored.
func Status(status string, width int) string {
	padded := fmt.Sprintf("%-*s", width, status)
	switch status {
	case "active", "approved":
		return Success.Sprint(padded)
	case "revoked", "rejected":
		return Error.Sprint(padded)
	case "expired", "pending":
		return Warning.Sprint(padded)
	default:
		return padded
	}
}

// Mask hides all but the last four characters of a value. Values of four
// characters or fewer are hidden completely.
func Mask(value string) string {
	r := []rune(value)
	if len(r) <= 4 {
		return strings.Repeat("•", len(r))
	}
	return strings.Repeat("•", len(r)-4) + string(r[len(r)-4:])
}
