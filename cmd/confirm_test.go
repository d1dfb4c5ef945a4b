package cmd

import (
	"bytes"
	"strings"
	"testing"

	"wordsmith/pkg/errors"
)

func TestRequireConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assumeYes bool
		dryRun    bool
		wantCode  errors.ExitCode
		wantOut   string
	}{
		{name: "yes", input: "y\n", wantOut: "Warning: You are about to clear history"},
		{name: "full yes without newline", input: "YES"},
		{name: "no", input: "n\n", wantCode: errors.ExitCodeCancellation},
		{name: "empty answer", input: "\n", wantCode: errors.ExitCodeCancellation},
		{name: "assume yes", assumeYes: true},
		{name: "dry run", dryRun: true, wantCode: errors.ExitCodeCancellation, wantOut: "[DRY-RUN] Would clear history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := promptInput
			promptInput = strings.NewReader(tt.input)
			assumeYesFlag, dryRunFlag = tt.assumeYes, tt.dryRun
			t.Cleanup(func() {
				promptInput = orig
				assumeYesFlag, dryRunFlag = false, false
			})

			var buf bytes.Buffer
			err := RequireConfirmation(&buf, "clear history", map[string]string{"entries": "3"})
			if tt.wantCode == 0 && err != nil {
				t.Fatalf("RequireConfirmation() error = %v", err)
			}
			if tt.wantCode != 0 && !errors.IsExitCode(err, tt.wantCode) {
				t.Fatalf("RequireConfirmation() error = %v, want exit code %d", err, tt.wantCode)
			}
			if !strings.Contains(buf.String(), tt.wantOut) {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantOut)
			}
		})
	}
}

func TestPrintDryRunActionSortsKeys(t *testing.T) {
	var buf bytes.Buffer
	PrintDryRunAction(&buf, "convert text", map[string]string{"model": "m", "api key": "env", "input": "3"})

	out := buf.String()
	a, i, m := strings.Index(out, "api key"), strings.Index(out, "input"), strings.Index(out, "model")
	if a < 0 || !(a < i && i < m) {
		t.Errorf("keys not sorted:\n%s", out)
	}
}

