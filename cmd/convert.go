package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"wordsmith/pkg/backend"
	"wordsmith/pkg/clipboard"
	"wordsmith/pkg/config"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/lifecycle"
	"wordsmith/pkg/logger"
	"wordsmith/pkg/models"
	"wordsmith/pkg/preview"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	convertText      string
	convertProvider  string
	convertModel     string
	convertCopy      bool
	convertPreview   bool
	convertNoHistory bool
	convertOutput    string
)

var newConverter = func(cfg config.BackendConfig) (backend.Converter, error) {
	return backend.New(cfg)
}

var newClipboardWriter = func(cfg *config.Config) clipboard.Writer {
	return clipboard.NewSystemWriter(cfg.Clipboard.PlainFallback)
}

// convertResult is the structured output of a conversion.
type convertResult struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
	HTML     string `json:"html" yaml:"html"`
	Elapsed  string `json:"elapsed" yaml:"elapsed"`
	Copied   bool   `json:"copied" yaml:"copied"`
}

var convertCmd = NewCommand("convert [file]",
	"Convert text into Word-ready HTML",
	`Send text to the configured backend and print the HTML fragment it returns.

Input is taken from --text, from a file argument ("-" for stdin), or from
piped stdin. Successful conversions are stored in the history so they can be
copied again later without another backend call.`).
	WithExample(`  # Convert the clipboard contents and copy the result as rich text
  wl-paste | wordsmith convert --copy

  # Convert a file with Gemini and preview the result
  wordsmith convert notes.md --provider gemini --preview

  # Write the fragment to a file
  wordsmith convert --text 'E=mc^2' -o formula.html`).
	WithMaxArgs(1).
	WithRun(runConvert).
	Build()

func runConvert(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd.InOrStdin(), convertText, args)
	if err != nil {
		return err
	}
	if (models.ConversionRequest{RawText: input}).IsBlank() {
		return errors.NewWithSuggestion(errors.ExitCodeValidation, "input text is blank",
			"Paste or pipe the text you want to convert.")
	}

	overrides := currentOverrides()
	overrides.Provider = convertProvider
	overrides.Model = convertModel
	cfg, err := loadConfig(overrides)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()

	if IsDryRun() {
		PrintDryRunAction(stdout, "convert text", map[string]string{
			"provider":    cfg.Backend.Provider,
			"model":       cfg.Backend.Model,
			"endpoint":    cfg.Backend.BaseURL,
			"temperature": fmt.Sprintf("%g", cfg.Backend.TemperatureOrDefault()),
			"instruction": backend.InstructionVersion,
			"input":       fmt.Sprintf("%d characters", len([]rune(input))),
			"api key":     keySourceLabel(cfg.Backend),
		})
		return nil
	}

	conv, err := newConverter(cfg.Backend)
	if err != nil {
		return err
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(stdout)

	label := cfg.Backend.Provider + "/" + cfg.Backend.Model
	display := newTerminalDisplay(stderr, label, out.IsStructured())
	controller := lifecycle.NewController(conv, display)

	ctx, cancel := GetContext(cfg.Backend.Timeout)
	defer cancel()

	if err := controller.Convert(ctx, input); err != nil {
		if stderrors.Is(err, lifecycle.ErrBlankInput) {
			return errors.ValidationError("input text is blank")
		}
		errors.PrintSuggestion(stderr, err)
		return errors.Reported(err)
	}

	result, _ := controller.Result()
	state := controller.Snapshot()

	var entryID string
	if cfg.History.IsEnabled() && !convertNoHistory {
		entryID = saveHistory(stderr, cfg, input, result)
	}

	if convertOutput != "" {
		if err := os.WriteFile(convertOutput, []byte(result.HTML+"\n"), 0o644); err != nil {
			return errors.WrapWithCode(err, errors.ExitCodeFileOperation, "failed to write "+convertOutput)
		}
		fmt.Fprintf(stderr, "Wrote %s\n", convertOutput)
	}

	var copyErr error
	if convertCopy {
		copyErr = copyHTML(ctx, newClipboardWriter(cfg), result.HTML)
	}
	copied := convertCopy && copyErr == nil

	if out.IsStructured() {
		if err := out.Write(convertResult{
			ID:       entryID,
			Provider: result.Provider,
			Model:    result.Model,
			HTML:     result.HTML,
			Elapsed:  state.Elapsed.Round(time.Millisecond).String(),
			Copied:   copied,
		}); err != nil {
			return err
		}
	} else if convertPreview {
		if err := printPreview(stdout, stderr, result.HTML); err != nil {
			return err
		}
	} else if convertOutput == "" {
		fmt.Fprintln(stdout, result.HTML)
	}

	if copyErr != nil {
		return copyErr
	}
	if copied && !out.IsStructured() {
		printCopied(stderr)
	}
	return nil
}

// saveHistory stores a successful result. A storage failure never fails the
// conversion; the user is warned instead.
func saveHistory(w io.Writer, cfg *config.Config, input string, result models.ConversionResult) string {
	store, err := openHistory(cfg)
	if err != nil {
		warnHistory(w, err)
		return ""
	}
	defer store.Close()

	entry, err := store.Save(input, result)
	if err != nil {
		warnHistory(w, err)
		return ""
	}
	logger.Debug().Str("id", entry.ID).Msg("conversion saved to history")
	return entry.ID
}

func warnHistory(w io.Writer, err error) {
	logger.Warn().Err(err).Str("operation", "save").Msg(errors.ErrMsgHistoryFailed)
	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintln(w, "warning: the result was not saved to history")
}

// copyHTML packages html and hands it to the clipboard writer.
func copyHTML(ctx context.Context, w clipboard.Writer, html string) error {
	payload := clipboard.Pack(html)
	logger.Debug().
		Int("rich_text_bytes", len(payload.RichText)).
		Int("plain_text_bytes", len(payload.PlainText)).
		Msg("writing clipboard payload")
	return w.Write(ctx, payload)
}

func printCopied(w io.Writer) {
	green := color.New(color.FgGreen)
	_, _ = green.Fprint(w, "✓ ")
	fmt.Fprintln(w, "Copied to clipboard! Paste into Word to keep the formatting.")
}

// printPreview writes the Markdown rendering of html. A rendering failure
// falls back to the raw fragment.
func printPreview(stdout, stderr io.Writer, html string) error {
	md, err := preview.Markdown(html)
	if err != nil {
		logger.Warn().Err(err).Msg("preview rendering failed")
		fmt.Fprintln(stderr, "warning: preview unavailable, showing raw HTML")
	}
	_, err = fmt.Fprintln(stdout, md)
	return err
}

func keySourceLabel(b config.BackendConfig) string {
	if b.KeySource() == "" {
		return "not configured"
	}
	return b.KeySource()
}

func init() {
	convertCmd.Flags().StringVarP(&convertText, "text", "t", "", "Text to convert instead of reading a file or stdin")
	convertCmd.Flags().StringVarP(&convertProvider, "provider", "p", "", "Backend provider (deepseek, gemini, openai)")
	convertCmd.Flags().StringVarP(&convertModel, "model", "m", "", "Model name (default depends on the provider)")
	convertCmd.Flags().BoolVarP(&convertCopy, "copy", "c", false, "Copy the result to the clipboard as rich text")
	convertCmd.Flags().BoolVar(&convertPreview, "preview", false, "Print a Markdown preview instead of the raw HTML")
	convertCmd.Flags().BoolVar(&convertNoHistory, "no-history", false, "Do not store this conversion in the history")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Write the HTML fragment to a file")
}
