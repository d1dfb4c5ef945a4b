package cmd

import (
	"fmt"
	"io"
	"time"

	"wordsmith/pkg/config"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/filter"
	"wordsmith/pkg/history"
	"wordsmith/pkg/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const excerptWidth = 48

var (
	historyInputRegex    string
	historyInputFuzzy    string
	historyInputContains string
	historyProvider      string
	historyModel         string
	historySince         time.Duration
	historyLimit         int
	historyShowPreview   bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "Browse and manage stored conversions",
	Long: `Successful conversions are stored locally so they can be listed, shown
and copied again without another backend call. The store location and size
are set under history: in the config file.`,
}

var historyListCmd = NewCommand("list",
	"List stored conversions, newest first",
	`List stored conversions, newest first. Filters narrow the list by input
text, provider, model or age.`).
	WithAliases("ls").
	WithExample(`  # Recent conversions
  wordsmith history list

  # Conversions mentioning "matrix" made with Gemini in the last day
  wordsmith history list --input-contains matrix --provider gemini --since 24h

  # Fuzzy match on the input
  wordsmith history list --input-fuzzy "eqmc"`).
	WithMaxArgs(0).
	WithHistory(runHistoryList).
	Build()

var historyShowCmd = NewCommand("show [id]",
	"Show a stored conversion",
	`Print the HTML fragment of a stored conversion. Without an id the most
recent conversion is shown.`).
	WithMaxArgs(1).
	WithHistory(runHistoryShow).
	Build()

var historyDeleteCmd = NewCommand("delete <id>",
	"Delete a stored conversion",
	"Delete one stored conversion by id or unique id prefix.").
	WithAliases("rm").
	WithArgsValidation(1).
	WithHistory(runHistoryDelete).
	Build()

var historyClearCmd = NewCommand("clear",
	"Delete all stored conversions",
	"Delete every stored conversion. Asks for confirmation unless --yes is given.").
	WithMaxArgs(0).
	WithHistory(runHistoryClear).
	Build()

var historyInfoCmd = NewCommand("info",
	"Show where the history is stored and how large it is",
	"Show the history database path, entry count, retention limit and date range.").
	WithMaxArgs(0).
	WithHistory(runHistoryInfo).
	Build()

func runHistoryList(cmd *cobra.Command, args []string, cfg *config.Config, store *history.Store) error {
	f := &filter.HistoryFilter{
		InputRegex:    historyInputRegex,
		InputFuzzy:    historyInputFuzzy,
		InputContains: historyInputContains,
		Model:         historyModel,
	}
	if historySince > 0 {
		f.Since = time.Now().Add(-historySince)
	}

	q := history.Query{Provider: historyProvider}
	// in-memory filters need every row before the limit applies
	if f.IsEmpty() {
		q.Limit = historyLimit
	}

	entries, err := store.List(q)
	if err != nil {
		return err
	}
	entries, err = f.Apply(entries)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeValidation, "invalid history filter", err)
	}
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	if out.IsStructured() {
		if entries == nil {
			entries = []models.HistoryEntry{}
		}
		return out.Write(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversions found.")
		return nil
	}
	return renderHistoryTable(cmd.OutOrStdout(), entries)
}

func renderHistoryTable(w io.Writer, entries []models.HistoryEntry) error {
	t := NewTable("ID", "CREATED", "PROVIDER", "MODEL", "INPUT")
	for _, e := range entries {
		t.AddRow(e.ShortID(), FormatTimestamp(e.CreatedAt), e.Provider, e.Model, truncateCells(e.Excerpt(0), excerptWidth))
	}
	return t.Render(w)
}

func runHistoryShow(cmd *cobra.Command, args []string, cfg *config.Config, store *history.Store) error {
	entry, err := resolveEntry(store, args)
	if err != nil {
		return err
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	if out.IsStructured() {
		return out.Write(entry)
	}

	cyan := color.New(color.FgCyan)
	stderr := cmd.ErrOrStderr()
	_, _ = cyan.Fprintf(stderr, "%s  %s  %s/%s\n", entry.ShortID(), FormatTimestamp(entry.CreatedAt), entry.Provider, entry.Model)

	if historyShowPreview {
		return printPreview(cmd.OutOrStdout(), stderr, entry.HTML)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), entry.HTML)
	return err
}

func runHistoryDelete(cmd *cobra.Command, args []string, cfg *config.Config, store *history.Store) error {
	entry, err := store.Get(args[0])
	if err != nil {
		return err
	}

	if err := RequireConfirmation(cmd.ErrOrStderr(), "delete a stored conversion", map[string]string{
		"id":      entry.ID,
		"created": FormatTimestamp(entry.CreatedAt),
		"input":   entry.Excerpt(60),
	}); err != nil {
		if IsDryRun() {
			return nil
		}
		return err
	}

	if err := store.Delete(entry.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted conversion %s\n", entry.ShortID())
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string, cfg *config.Config, store *history.Store) error {
	info, err := store.Info()
	if err != nil {
		return err
	}
	if info.Count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "History is already empty.")
		return nil
	}

	if err := RequireConfirmation(cmd.ErrOrStderr(), "delete all stored conversions", map[string]string{
		"path":    info.Path,
		"entries": fmt.Sprintf("%d", info.Count),
	}); err != nil {
		if IsDryRun() {
			return nil
		}
		return err
	}

	n, err := store.Clear()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d conversion(s)\n", n)
	return nil
}

func runHistoryInfo(cmd *cobra.Command, args []string, cfg *config.Config, store *history.Store) error {
	info, err := store.Info()
	if err != nil {
		return err
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	if out.IsStructured() {
		return out.Write(info)
	}

	w := cmd.OutOrStdout()
	limit := "unlimited"
	if info.Limit > 0 {
		limit = fmt.Sprintf("%d", info.Limit)
	}
	fmt.Fprintf(w, "Path:     %s\n", info.Path)
	fmt.Fprintf(w, "Entries:  %d\n", info.Count)
	fmt.Fprintf(w, "Limit:    %s\n", limit)
	fmt.Fprintf(w, "Oldest:   %s\n", FormatTimestamp(info.Oldest))
	fmt.Fprintf(w, "Newest:   %s\n", FormatTimestamp(info.Newest))
	if !cfg.History.IsEnabled() {
		yellow := color.New(color.FgYellow)
		_, _ = yellow.Fprintln(w, "Saving is disabled (history.enabled: false)")
	}
	return nil
}

func init() {
	historyListCmd.Flags().StringVar(&historyInputRegex, "input-regex", "", "Filter by regular expression on the input text")
	historyListCmd.Flags().StringVar(&historyInputFuzzy, "input-fuzzy", "", "Filter by fuzzy match on the input text")
	historyListCmd.Flags().StringVar(&historyInputContains, "input-contains", "", "Filter by case-insensitive substring of the input text")
	historyListCmd.Flags().StringVarP(&historyProvider, "provider", "p", "", "Filter by provider")
	historyListCmd.Flags().StringVarP(&historyModel, "model", "m", "", "Filter by model")
	historyListCmd.Flags().DurationVar(&historySince, "since", 0, "Only show conversions newer than this (e.g. 24h)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of conversions to show (0 for all)")

	historyShowCmd.Flags().BoolVar(&historyShowPreview, "preview", false, "Print a Markdown preview instead of the raw HTML")
}
