package completions

import (
	"fmt"
	"strings"

	"wordsmith/pkg/config"
	"wordsmith/pkg/history"

	"github.com/spf13/cobra"
)

const historySuggestions = 20

type Completer struct {
	loadConfig  func() (*config.Config, error)
	historyPath func() string
}

func NewCompleter() *Completer {
	return &Completer{
		loadConfig: config.LoadFile,
		historyPath: func() string {
			cfg, err := config.Load(config.Overrides{})
			if err != nil {
				return ""
			}
			return cfg.HistoryPath()
		},
	}
}

func (c *Completer) CompleteProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	results := c.filterPrefix(config.Providers(), toComplete)
	for i, p := range results {
		results[i] = fmt.Sprintf("%s\t%s", p, getProviderDescription(p))
	}
	return results, cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteModels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	provider, _ := cmd.Flags().GetString("provider")
	models := []string{}
	for _, p := range config.Providers() {
		if provider != "" && provider != p {
			continue
		}
		models = append(models, knownModels[p]...)
	}
	return c.filterPrefix(models, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteProfiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}

	names := []string{}
	for _, name := range cfg.ListProfiles() {
		p, err := cfg.GetProfile(name)
		if err != nil {
			continue
		}
		names = append(names, fmt.Sprintf("%s\t%s", name, p.Backend.Provider))
	}
	return c.filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteOutputFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	results := c.filterPrefix([]string{"table", "json", "yaml"}, toComplete)
	for i, format := range results {
		results[i] = fmt.Sprintf("%s\t%s", format, getFormatDescription(format))
	}
	return results, cobra.ShellCompDirectiveNoFileComp
}

// CompleteHistoryIDs suggests short IDs of recent conversions for the first
// positional argument.
func (c *Completer) CompleteHistoryIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	path := c.historyPath()
	if path == "" {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}

	store, err := history.Open(path, 0)
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	defer store.Close()

	entries, err := store.List(history.Query{Limit: historySuggestions})
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, fmt.Sprintf("%s\t%s", e.ShortID(), e.Excerpt(40)))
	}
	return c.filterPrefix(ids, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) filterPrefix(items []string, prefix string) []string {
	result := []string{}
	for _, item := range items {
		itemName := strings.Split(item, "\t")[0]
		if strings.HasPrefix(strings.ToLower(itemName), strings.ToLower(prefix)) {
			result = append(result, item)
		}
	}
	return result
}

var knownModels = map[string][]string{
	config.ProviderDeepSeek: {"deepseek-chat", "deepseek-reasoner"},
	config.ProviderGemini:   {"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"},
	config.ProviderOpenAI:   {"gpt-4o-mini", "gpt-4o", "gpt-4.1"},
}

func getProviderDescription(provider string) string {
	switch provider {
	case config.ProviderDeepSeek:
		return "DeepSeek chat completions"
	case config.ProviderGemini:
		return "Google Gemini generateContent"
	case config.ProviderOpenAI:
		return "OpenAI-compatible chat completions"
	default:
		return ""
	}
}

func getFormatDescription(format string) string {
	switch format {
	case "table":
		return "Aligned columns for the terminal"
	case "json":
		return "JSON document"
	case "yaml":
		return "YAML document"
	default:
		return ""
	}
}

func RegisterCompletions(rootCmd *cobra.Command) {
	completer := NewCompleter()

	for _, path := range [][]string{{"convert"}, {"history", "list"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == nil || cmd == rootCmd {
			continue
		}
		cmd.RegisterFlagCompletionFunc("provider", completer.CompleteProviders)
	}

	if convertCmd, _, err := rootCmd.Find([]string{"convert"}); err == nil && convertCmd != rootCmd {
		convertCmd.RegisterFlagCompletionFunc("model", completer.CompleteModels)
	}

	for _, path := range [][]string{{"copy"}, {"history", "show"}, {"history", "delete"}} {
		if cmd, _, err := rootCmd.Find(path); err == nil && cmd != rootCmd {
			cmd.ValidArgsFunction = completer.CompleteHistoryIDs
		}
	}

	for _, path := range [][]string{{"config", "profiles", "use"}, {"config", "profiles", "remove"}} {
		if cmd, _, err := rootCmd.Find(path); err == nil && cmd != rootCmd {
			cmd.RegisterFlagCompletionFunc("name", completer.CompleteProfiles)
		}
	}

	if setKeyCmd, _, err := rootCmd.Find([]string{"config", "set-key"}); err == nil && setKeyCmd != rootCmd {
		setKeyCmd.RegisterFlagCompletionFunc("provider", completer.CompleteProviders)
	}

	rootCmd.RegisterFlagCompletionFunc("format", completer.CompleteOutputFormat)
	rootCmd.RegisterFlagCompletionFunc("profile", completer.CompleteProfiles)
}
