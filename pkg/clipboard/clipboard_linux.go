//go:build linux

package clipboard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"wordsmith/pkg/clipboard/internal/wayland"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/logger"

	atotto "github.com/atotto/clipboard"
)

// ServeCommand is the hidden subcommand the owner process runs as.
const ServeCommand = "__clipboard-serve"

const (
	readyLine    = "ready"
	errorPrefix  = "error: "
	readyTimeout = 10 * time.Second
)

// plainAliases are the extra targets some toolkits ask for instead of
// text/plain. They carry the same bytes.
var plainAliases = []string{"text/plain;charset=utf-8", "UTF8_STRING", "STRING"}

func (w *SystemWriter) Write(ctx context.Context, p Payload) error {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		err := spawnOwner(ctx, p)
		if err == nil {
			return nil
		}
		if !w.PlainFallback {
			return errors.ClipboardAccessError(err)
		}
		logger.Warn().Err(err).Msg("rich clipboard unavailable, copying plain text only")
	} else if !w.PlainFallback {
		return errors.ClipboardAccessError(ErrRichTextUnsupported)
	}

	if err := atotto.WriteAll(string(p.PlainText)); err != nil {
		return errors.ClipboardAccessError(err)
	}
	return nil
}

// spawnOwner re-executes this binary as a detached clipboard owner and waits
// until it reports that the selection is set.
func spawnOwner(ctx context.Context, p Payload) error {
	input, err := json.Marshal(p)
	if err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	cmd := exec.Command(exe, ServeCommand)
	cmd.Stdin = bytes.NewReader(input)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(stdout).ReadString('\n')
		lines <- strings.TrimSpace(line)
	}()

	select {
	case line := <-lines:
		switch {
		case line == readyLine:
			logger.Debug().Int("pid", cmd.Process.Pid).Msg("clipboard owner ready")
			return cmd.Process.Release()
		case strings.HasPrefix(line, errorPrefix):
			cmd.Wait() //nolint:errcheck
			return fmt.Errorf("%s", strings.TrimPrefix(line, errorPrefix))
		default:
			cmd.Wait() //nolint:errcheck
			return fmt.Errorf("clipboard owner exited before taking the selection")
		}
	case <-ctx.Done():
		cmd.Process.Kill() //nolint:errcheck
		cmd.Wait()         //nolint:errcheck
		return fmt.Errorf("clipboard owner did not start: %w", ctx.Err())
	}
}

// ServeClipboard runs in the owner process. It reads a Payload from in, owns
// the selection, and reports readiness or failure as one line on out. It
// returns when another client takes the selection.
func ServeClipboard(in io.Reader, out io.Writer) error {
	var p Payload
	if err := json.NewDecoder(in).Decode(&p); err != nil {
		fmt.Fprintf(out, "%s%v\n", errorPrefix, err)
		return err
	}

	offers := []wayland.Offer{{MIME: MIMEHTML, Data: p.RichText}, {MIME: MIMEPlain, Data: p.PlainText}}
	for _, alias := range plainAliases {
		offers = append(offers, wayland.Offer{MIME: alias, Data: p.PlainText})
	}

	ready := false
	err := wayland.Serve(offers, func() {
		ready = true
		fmt.Fprintln(out, readyLine)
	})
	if err != nil && !ready {
		fmt.Fprintf(out, "%s%v\n", errorPrefix, err)
	}
	return err
}
