package cmd

import (
	"fmt"
	"io"
	"sync"

	"wordsmith/pkg/lifecycle"
	"wordsmith/pkg/progress"

	"github.com/fatih/color"
)

// terminalDisplay renders controller states to stderr: a spinner while
// Processing, then a one-line outcome.
type terminalDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	spinner *progress.Spinner
	quiet   bool
}

func newTerminalDisplay(out io.Writer, label string, quiet bool) *terminalDisplay {
	spinner := progress.NewSpinner(fmt.Sprintf("Converting with %s...", label))
	spinner.SetWriter(out)
	return &terminalDisplay{
		out:     out,
		label:   label,
		spinner: spinner,
		quiet:   quiet,
	}
}

func (d *terminalDisplay) Render(s lifecycle.State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch s.Status {
	case lifecycle.Processing:
		if !d.quiet && !d.spinner.IsRunning() {
			d.spinner.Start()
		}
	case lifecycle.Success:
		d.spinner.Stop()
		if d.quiet {
			return
		}
		green := color.New(color.FgGreen)
		_, _ = green.Fprint(d.out, "✓ ")
		fmt.Fprintf(d.out, "Converted in %s (%s)\n", progress.FormatElapsed(s.Elapsed), d.label)
	case lifecycle.Error:
		d.spinner.Stop()
		red := color.New(color.FgRed, color.Bold)
		fmt.Fprintln(d.out)
		_, _ = red.Fprint(d.out, "Error: ")
		fmt.Fprintln(d.out, s.ErrorMessage)
		if s.HTML != "" {
			fmt.Fprintln(d.out, "The previous result is still available.")
		}
	}
}
