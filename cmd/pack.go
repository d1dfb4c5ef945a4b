package cmd

import (
	"fmt"
	"os"
	"strings"

	"wordsmith/pkg/clipboard"
	"wordsmith/pkg/errors"

	"github.com/spf13/cobra"
)

var (
	packPlain  bool
	packOutput string
	packCopy   bool
)

var packCmd = NewCommand("pack [file]",
	"Wrap an HTML fragment in the Word clipboard envelope",
	`Build the clipboard payload for an existing HTML fragment without calling
a backend. By default the rich-text envelope is printed; --plain prints the
plain-text fallback instead. With --copy both representations are placed on
the clipboard together.`).
	WithExample(`  # Inspect what would be placed on the clipboard
  wordsmith pack fragment.html

  # Copy a hand-written fragment as rich text
  echo '<p><b>bold</b></p>' | wordsmith pack --copy`).
	WithMaxArgs(1).
	WithRun(runPack).
	Build()

func runPack(cmd *cobra.Command, args []string) error {
	fragment, err := readInput(cmd.InOrStdin(), "", args)
	if err != nil {
		return err
	}
	fragment = strings.TrimRight(fragment, "\r\n")
	if strings.TrimSpace(fragment) == "" {
		return errors.ValidationError("HTML fragment is empty")
	}

	payload := clipboard.Pack(fragment)

	if packCopy {
		cfg, err := loadConfig(currentOverrides())
		if err != nil {
			return err
		}
		if IsDryRun() {
			PrintDryRun(cmd.OutOrStdout(), "Would copy %d bytes of rich text and %d bytes of plain text",
				len(payload.RichText), len(payload.PlainText))
			return nil
		}
		ctx, cancel := GetContext(0)
		defer cancel()
		if err := newClipboardWriter(cfg).Write(ctx, payload); err != nil {
			return err
		}
		printCopied(cmd.ErrOrStderr())
		return nil
	}

	data := payload.RichText
	if packPlain {
		data = payload.PlainText
	}

	if packOutput != "" {
		if err := os.WriteFile(packOutput, data, 0o644); err != nil {
			return errors.WrapWithCode(err, errors.ExitCodeFileOperation, "failed to write "+packOutput)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", packOutput)
		return nil
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func init() {
	packCmd.Flags().BoolVar(&packPlain, "plain", false, "Print the plain-text fallback instead of the envelope")
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "Write the payload to a file")
	packCmd.Flags().BoolVarP(&packCopy, "copy", "c", false, "Copy the payload to the clipboard")
}
