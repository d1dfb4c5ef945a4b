package cmd

import (
	"io"
	"os"
	"strings"

	"wordsmith/pkg/errors"

	"github.com/mattn/go-isatty"
)

const maxInputBytes = 4 << 20

// readInput resolves the text to convert from, in order: the --text flag, a
// file argument ("-" is stdin), or piped stdin. Every source is capped at
// maxInputBytes and loses a leading byte order mark.
func readInput(stdin io.Reader, text string, args []string) (string, error) {
	if text != "" {
		if len(args) > 0 {
			return "", errors.ValidationError("use either --text or a file argument, not both")
		}
		return normalizeInput("--text", strings.NewReader(text))
	}

	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ExitCodeFileOperation, "failed to open "+args[0])
		}
		defer f.Close()
		return normalizeInput(args[0], f)
	}

	if len(args) == 0 && isTerminal(stdin) {
		return "", errors.NewWithSuggestion(errors.ExitCodeValidation,
			"no input text provided",
			"Pass text with --text, a file path, or pipe it on stdin:\n  pbpaste | wordsmith convert")
	}
	return normalizeInput("stdin", stdin)
}

// normalizeInput reads at most maxInputBytes from r and strips a leading
// UTF-8 byte order mark.
func normalizeInput(source string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ExitCodeFileOperation, "failed to read "+source)
	}
	if len(data) > maxInputBytes {
		return "", errors.ValidationError(source + " exceeds 4 MiB")
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
