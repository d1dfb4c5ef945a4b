//go:build !linux

package clipboard

import (
	"context"
	"fmt"
	"io"

	"wordsmith/pkg/errors"

	atotto "github.com/atotto/clipboard"
)

const ServeCommand = "__clipboard-serve"

// Write only succeeds with PlainFallback set; there is no dual-format owner
// on this platform.
func (w *SystemWriter) Write(ctx context.Context, p Payload) error {
	if !w.PlainFallback {
		return errors.ClipboardAccessError(ErrRichTextUnsupported)
	}
	if err := atotto.WriteAll(string(p.PlainText)); err != nil {
		return errors.ClipboardAccessError(err)
	}
	return nil
}

// ServeClipboard is not available on this platform.
func ServeClipboard(in io.Reader, out io.Writer) error {
	return fmt.Errorf("clipboard owner is only supported on Linux/Wayland")
}
