package ui

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func forceColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = original })
}

func TestFormatterWithColor(t *testing.T) {
	forceColor(t)

	result := Code.Sprint("credshare init")
	if strings.Contains(result, "`") {
		t.Errorf("Code.Sprint should not contain backticks when color is enabled, got: %s", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Code.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "credshare init", "`credshare init`"},
		{"Path has no decoration", Path, "vault.toml", "vault.toml"},
		{"Success has no decoration", Success, "✓", "✓"},
		{"Highlight adds quotes", Highlight, "bob@example.com", "'bob@example.com'"},
		{"Muted adds parentheses", Muted, "4f1c", "(4f1c)"},
		{"Secret adds angle brackets", Secret, " padded ", "< padded >"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.formatter.Sprint(tt.input); got != tt.want {
				t.Errorf("Sprint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatterSprintf(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := Code.Sprintf("credshare share %s", "list"); got != "`credshare share list`" {
		t.Errorf("Code.Sprintf() = %q", got)
	}
	if got := Code.Sprint("credshare", " ", "share"); got != "`credshare share`" {
		t.Errorf("Code.Sprint with multiple args = %q", got)
	}
}

func TestStatus(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := Status("active", 8); got != "active  " {
		t.Errorf("Status(active) = %q", got)
	}
	if got := Status("unknown", 0); got != "unknown" {
		t.Errorf("Status(unknown) = %q", got)
	}
}

func TestStatusWithColor(t *testing.T) {
	forceColor(t)

	for _, s := range []string{"active", "revoked", "expired", "pending", "approved", "rejected"} {
		if got := Status(s, 0); !strings.Contains(got, "\x1b[") {
			t.Errorf("Status(%q) should be colored, got %q", s, got)
		}
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "•••"},
		{"hunter2", "•••ter2"},
		{"pässwörd", "••••wörd"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsureNewline(t *testing.T) {
	if got := EnsureNewline("done"); got != "done\n" {
		t.Errorf("EnsureNewline(done) = %q", got)
	}
	if got := EnsureNewline("done\n"); got != "done\n" {
		t.Errorf("EnsureNewline kept extra newline: %q", got)
	}
	if got := EnsureNewline(""); got != "\n" {
		t.Errorf("EnsureNewline(empty) = %q", got)
	}
}
