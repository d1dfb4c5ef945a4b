package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordsmith/pkg/errors"
)

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.md")
	bom := filepath.Join(dir, "bom.md")
	if err := os.WriteFile(plain, []byte("# 标题\n$x^2$"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bom, []byte("\ufeffhello"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		stdin    string
		text     string
		args     []string
		want     string
		wantCode errors.ExitCode
	}{
		{name: "text flag", text: "E=mc^2", want: "E=mc^2"},
		{name: "text flag wins over stdin", stdin: "ignored", text: "flag", want: "flag"},
		{name: "text flag and file", text: "a", args: []string{plain}, wantCode: errors.ExitCodeValidation},
		{name: "file", args: []string{plain}, want: "# 标题\n$x^2$"},
		{name: "file with byte order mark", args: []string{bom}, want: "hello"},
		{name: "missing file", args: []string{filepath.Join(dir, "nope.md")}, wantCode: errors.ExitCodeFileOperation},
		{name: "dash reads stdin", stdin: "from stdin", args: []string{"-"}, want: "from stdin"},
		{name: "piped stdin", stdin: "piped\n", want: "piped\n"},
		{name: "stdin with byte order mark", stdin: "\ufeffpiped", want: "piped"},
		{name: "text flag with byte order mark", text: "\ufeffflag", want: "flag"},
		{name: "byte order mark kept mid-text", stdin: "a\ufeffb", want: "a\ufeffb"},
		{name: "empty stdin is not an error", stdin: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readInput(strings.NewReader(tt.stdin), tt.text, tt.args)
			if tt.wantCode != 0 {
				if !errors.IsExitCode(err, tt.wantCode) {
					t.Fatalf("readInput() error = %v, want exit code %d", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("readInput() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("readInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadInputRejectsOversizedInput(t *testing.T) {
	big := strings.Repeat("a", maxInputBytes+1)
	file := filepath.Join(t.TempDir(), "big.md")
	if err := os.WriteFile(file, []byte(big), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		stdin string
		text  string
		args  []string
	}{
		{name: "stdin", stdin: big},
		{name: "text flag", text: big},
		{name: "file", args: []string{file}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readInput(strings.NewReader(tt.stdin), tt.text, tt.args); !errors.IsExitCode(err, errors.ExitCodeValidation) {
				t.Errorf("readInput() error = %v, want validation error", err)
			}
		})
	}

	exact := strings.Repeat("a", maxInputBytes)
	if got, err := readInput(strings.NewReader(exact), "", nil); err != nil || len(got) != maxInputBytes {
		t.Errorf("readInput() at the limit = %d bytes, %v", len(got), err)
	}
}
