package cmd

import (
	"fmt"

	"wordsmith/pkg/config"
	"wordsmith/pkg/history"
	"wordsmith/pkg/models"

	"github.com/spf13/cobra"
)

var copyCmd = NewCommand("copy [id]",
	"Copy a stored conversion to the clipboard",
	`Copy a conversion from the history to the clipboard as rich text, without
calling the backend again. Without an id the most recent conversion is used.
Any unique prefix of the id is accepted.`).
	WithExample(`  # Copy the last result again
  wordsmith copy

  # Copy an older result
  wordsmith copy 3f2a9c`).
	WithMaxArgs(1).
	WithHistory(runCopy).
	Build()

func runCopy(cmd *cobra.Command, args []string, cfg *config.Config, store *history.Store) error {
	entry, err := resolveEntry(store, args)
	if err != nil {
		return err
	}

	if IsDryRun() {
		PrintDryRun(cmd.OutOrStdout(), "Would copy conversion %s (%d bytes of HTML)", entry.ShortID(), len(entry.HTML))
		return nil
	}

	ctx, cancel := GetContext(0)
	defer cancel()

	if err := copyHTML(ctx, newClipboardWriter(cfg), entry.HTML); err != nil {
		return err
	}
	printCopied(cmd.ErrOrStderr())
	fmt.Fprintf(cmd.ErrOrStderr(), "  %s  %s\n", entry.ShortID(), entry.Excerpt(60))
	return nil
}

// resolveEntry returns the entry named by args[0], or the latest one.
func resolveEntry(store *history.Store, args []string) (*models.HistoryEntry, error) {
	if len(args) == 0 {
		return store.Latest()
	}
	return store.Get(args[0])
}

