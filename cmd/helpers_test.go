package cmd

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"wordsmith/pkg/backend"
	"wordsmith/pkg/clipboard"
	"wordsmith/pkg/config"
	"wordsmith/pkg/logger"
	"wordsmith/pkg/models"

	"github.com/spf13/cobra"
)

type fakeConverter struct {
	mu    sync.Mutex
	html  string
	err   error
	calls int
	input string
}

func (f *fakeConverter) Name() string { return "deepseek" }

func (f *fakeConverter) Convert(ctx context.Context, req models.ConversionRequest) (models.ConversionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.input = req.RawText
	if f.err != nil {
		return models.ConversionResult{}, f.err
	}
	return models.ConversionResult{HTML: f.html, Provider: "deepseek", Model: "deepseek-chat"}, nil
}

type fakeWriter struct {
	payloads []clipboard.Payload
	err      error
}

func (w *fakeWriter) Write(ctx context.Context, p clipboard.Payload) error {
	if w.err != nil {
		return w.err
	}
	w.payloads = append(w.payloads, p)
	return nil
}

type testEnv struct {
	cfg       *config.Config
	converter *fakeConverter
	writer    *fakeWriter
}

// setupCommand swaps the injectable dependencies and resets every flag
// variable so tests do not leak state into each other.
func setupCommand(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		cfg: &config.Config{
			Backend: config.BackendConfig{
				Provider: config.ProviderDeepSeek,
				Model:    "deepseek-chat",
				BaseURL:  "https://api.deepseek.com",
				APIKey:   "sk-test",
			},
			History: config.HistoryConfig{Path: filepath.Join(t.TempDir(), "history.db")},
		},
		converter: &fakeConverter{html: "<p>E=mc<sup>2</sup></p>"},
		writer:    &fakeWriter{},
	}

	origLoad, origConv, origWriter := loadConfig, newConverter, newClipboardWriter
	loadConfig = func(config.Overrides) (*config.Config, error) { return env.cfg, nil }
	newConverter = func(config.BackendConfig) (backend.Converter, error) { return env.converter, nil }
	newClipboardWriter = func(*config.Config) clipboard.Writer { return env.writer }

	logger.SetOutput(io.Discard)

	resetFlags()
	t.Cleanup(func() {
		loadConfig, newConverter, newClipboardWriter = origLoad, origConv, origWriter
		resetFlags()
	})
	return env
}

func resetFlags() {
	convertText, convertProvider, convertModel, convertOutput = "", "", "", ""
	convertCopy, convertPreview, convertNoHistory = false, false, false
	historyInputRegex, historyInputFuzzy, historyInputContains = "", "", ""
	historyProvider, historyModel = "", ""
	historySince, historyLimit, historyShowPreview = 0, 20, false
	packPlain, packOutput, packCopy = false, "", false
	outputFormat = "table"
	dryRunFlag, assumeYesFlag = false, false
	globalTimeout = 0
}

// newTestCommand returns a command wired to in-memory streams.
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}
