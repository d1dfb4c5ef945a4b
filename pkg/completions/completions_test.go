package completions

import (
	"path/filepath"
	"strings"
	"testing"

	"wordsmith/pkg/config"
	"wordsmith/pkg/history"
	"wordsmith/pkg/models"

	"github.com/spf13/cobra"
)

func TestCompleteProviders(t *testing.T) {
	c := NewCompleter()
	got, directive := c.CompleteProviders(&cobra.Command{}, nil, "g")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v", directive)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "gemini\t") {
		t.Errorf("CompleteProviders(g) = %v", got)
	}

	all, _ := c.CompleteProviders(&cobra.Command{}, nil, "")
	if len(all) != len(config.Providers()) {
		t.Errorf("CompleteProviders() = %d items, want %d", len(all), len(config.Providers()))
	}
}

func TestCompleteModelsFollowsProviderFlag(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("provider", "", "")
	_ = cmd.Flags().Set("provider", "deepseek")

	got, _ := NewCompleter().CompleteModels(cmd, nil, "")
	for _, m := range got {
		if !strings.HasPrefix(m, "deepseek-") {
			t.Errorf("unexpected model %q for deepseek", m)
		}
	}
	if len(got) == 0 {
		t.Error("no models suggested")
	}
}

func TestCompleteProfiles(t *testing.T) {
	c := &Completer{loadConfig: func() (*config.Config, error) {
		return &config.Config{Profiles: []config.Profile{
			{Name: "work", Backend: config.BackendConfig{Provider: "gemini"}},
			{Name: "home", Backend: config.BackendConfig{Provider: "deepseek"}},
		}}, nil
	}}

	got, _ := c.CompleteProfiles(&cobra.Command{}, nil, "w")
	if len(got) != 1 || got[0] != "work\tgemini" {
		t.Errorf("CompleteProfiles(w) = %v", got)
	}
}

func TestCompleteHistoryIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	entry, err := store.Save("Energy is $E=mc^2$.", models.ConversionResult{HTML: "<p>x</p>", Provider: "deepseek", Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	c := &Completer{historyPath: func() string { return path }}

	got, _ := c.CompleteHistoryIDs(&cobra.Command{}, nil, "")
	if len(got) != 1 || !strings.HasPrefix(got[0], entry.ShortID()+"\t") {
		t.Errorf("CompleteHistoryIDs() = %v", got)
	}

	got, _ = c.CompleteHistoryIDs(&cobra.Command{}, []string{"already"}, "")
	if len(got) != 0 {
		t.Errorf("CompleteHistoryIDs() with an arg = %v, want none", got)
	}
}

func TestFilterPrefix(t *testing.T) {
	c := NewCompleter()
	items := []string{"json\tJSON", "yaml\tYAML", "table\tTable"}

	tests := []struct {
		prefix string
		want   int
	}{
		{"", 3},
		{"J", 1},
		{"ta", 1},
		{"x", 0},
	}
	for _, tt := range tests {
		if got := c.filterPrefix(items, tt.prefix); len(got) != tt.want {
			t.Errorf("filterPrefix(%q) = %v, want %d items", tt.prefix, got, tt.want)
		}
	}
}
