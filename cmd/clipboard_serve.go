package cmd

import (
	"os"

	"wordsmith/pkg/clipboard"
	"wordsmith/pkg/errors"

	"github.com/spf13/cobra"
)

var clipboardServeCmd = &cobra.Command{
	Use:    clipboard.ServeCommand,
	Hidden: true,
	Short:  "Internal: own the clipboard selection over Wayland (do not call directly)",
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The parent reads our stdout for the ready line; errors are
		// reported there too.
		if err := clipboard.ServeClipboard(os.Stdin, os.Stdout); err != nil {
			return errors.Reported(errors.ClipboardAccessError(err))
		}
		return nil
	},
}
