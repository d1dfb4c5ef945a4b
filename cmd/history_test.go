package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"wordsmith/pkg/errors"
	"wordsmith/pkg/history"
	"wordsmith/pkg/models"
)

func seedHistory(t *testing.T, env *testEnv, inputs ...string) (*history.Store, []models.HistoryEntry) {
	t.Helper()
	store, err := openHistory(env.cfg)
	if err != nil {
		t.Fatalf("openHistory() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var entries []models.HistoryEntry
	for _, in := range inputs {
		e, err := store.Save(in, models.ConversionResult{HTML: "<p>" + in + "</p>", Provider: "gemini", Model: "gemini-2.5-flash"})
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		entries = append(entries, e)
	}
	return store, entries
}

func TestHistoryListTable(t *testing.T) {
	env := setupCommand(t)
	store, entries := seedHistory(t, env, "first formula", "矩阵 matrix")
	cmd, stdout, _ := newTestCommand("")

	if err := runHistoryList(cmd, nil, env.cfg, store); err != nil {
		t.Fatalf("runHistoryList() error = %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"ID", "PROVIDER", entries[0].ShortID(), entries[1].ShortID(), "矩阵 matrix"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryListFiltersAndFormats(t *testing.T) {
	env := setupCommand(t)
	store, _ := seedHistory(t, env, "alpha", "beta", "alphabet")
	historyInputContains = "alpha"
	outputFormat = "json"
	cmd, stdout, _ := newTestCommand("")

	if err := runHistoryList(cmd, nil, env.cfg, store); err != nil {
		t.Fatalf("runHistoryList() error = %v", err)
	}
	var got []models.HistoryEntry
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	for _, e := range got {
		if !strings.Contains(e.Input, "alpha") {
			t.Errorf("unexpected entry %q", e.Input)
		}
	}
}

func TestHistoryListInvalidRegex(t *testing.T) {
	env := setupCommand(t)
	store, _ := seedHistory(t, env, "alpha")
	historyInputRegex = "("
	cmd, _, _ := newTestCommand("")

	if err := runHistoryList(cmd, nil, env.cfg, store); !errors.IsExitCode(err, errors.ExitCodeValidation) {
		t.Errorf("runHistoryList() error = %v, want validation error", err)
	}
}

func TestHistoryListEmpty(t *testing.T) {
	env := setupCommand(t)
	store, _ := seedHistory(t, env)
	outputFormat = "json"
	cmd, stdout, _ := newTestCommand("")

	if err := runHistoryList(cmd, nil, env.cfg, store); err != nil {
		t.Fatalf("runHistoryList() error = %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "[]" {
		t.Errorf("output = %q, want []", stdout.String())
	}
}

func TestHistoryShow(t *testing.T) {
	env := setupCommand(t)
	store, entries := seedHistory(t, env, "first", "second")
	cmd, stdout, _ := newTestCommand("")

	if err := runHistoryShow(cmd, []string{entries[0].ShortID()}, env.cfg, store); err != nil {
		t.Fatalf("runHistoryShow() error = %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "<p>first</p>" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestHistoryDeleteAndClear(t *testing.T) {
	env := setupCommand(t)
	assumeYesFlag = true
	store, entries := seedHistory(t, env, "first", "second", "third")
	cmd, _, _ := newTestCommand("")

	if err := runHistoryDelete(cmd, []string{entries[1].ID}, env.cfg, store); err != nil {
		t.Fatalf("runHistoryDelete() error = %v", err)
	}
	if _, err := store.Get(entries[1].ID); !errors.IsExitCode(err, errors.ExitCodeValidation) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}

	if err := runHistoryClear(cmd, nil, env.cfg, store); err != nil {
		t.Fatalf("runHistoryClear() error = %v", err)
	}
	info, err := store.Info()
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Count != 0 {
		t.Errorf("Count = %d after clear", info.Count)
	}
}

func TestHistoryClearDryRunKeepsEntries(t *testing.T) {
	env := setupCommand(t)
	dryRunFlag = true
	store, _ := seedHistory(t, env, "first")
	cmd, _, stderr := newTestCommand("")

	if err := runHistoryClear(cmd, nil, env.cfg, store); err != nil {
		t.Fatalf("runHistoryClear() error = %v", err)
	}
	if !strings.Contains(stderr.String(), "[DRY-RUN]") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if info, _ := store.Info(); info.Count != 1 {
		t.Errorf("Count = %d, dry run deleted entries", info.Count)
	}
}

func TestCopyUsesLatestEntry(t *testing.T) {
	env := setupCommand(t)
	store, entries := seedHistory(t, env, "first", "second")
	cmd, _, stderr := newTestCommand("")

	if err := runCopy(cmd, nil, env.cfg, store); err != nil {
		t.Fatalf("runCopy() error = %v", err)
	}
	if len(env.writer.payloads) != 1 {
		t.Fatalf("clipboard writes = %d, want 1", len(env.writer.payloads))
	}
	if !strings.Contains(string(env.writer.payloads[0].RichText), entries[1].HTML) {
		t.Errorf("copied %q, want the latest entry", env.writer.payloads[0].RichText)
	}
	if !strings.Contains(stderr.String(), entries[1].ShortID()) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestCopyEmptyHistory(t *testing.T) {
	env := setupCommand(t)
	store, _ := seedHistory(t, env)
	cmd, _, _ := newTestCommand("")

	if err := runCopy(cmd, nil, env.cfg, store); !errors.IsExitCode(err, errors.ExitCodeValidation) {
		t.Errorf("runCopy() error = %v, want not found", err)
	}
	if len(env.writer.payloads) != 0 {
		t.Error("clipboard written for an empty history")
	}
}
