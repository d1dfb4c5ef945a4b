// Package clipboard packages an HTML fragment for a word processor's
// clipboard importer and writes it to the system clipboard.
//
// The rich representation is the fragment inside an Office-flavoured HTML
// envelope with StartFragment/EndFragment markers; the plain one is the
// fragment with its tags blanked out. On Linux/Wayland both are offered by a
// detached clipboard-owner process that serves them together, so a paste
// sees either both representations or neither. Hosts that cannot hold both
// are refused unless the plain-text fallback is enabled.
package clipboard

import (
	"context"
	stderrors "errors"
)

// ErrRichTextUnsupported is the cause of a ClipboardAccessError on hosts
// that cannot hold text/html and text/plain at the same time.
var ErrRichTextUnsupported = stderrors.New("host clipboard cannot hold text/html and text/plain together")

// Writer registers a payload on a clipboard.
type Writer interface {
	Write(ctx context.Context, p Payload) error
}

// SystemWriter writes to the desktop clipboard. With PlainFallback set, a
// host without dual-format support receives only the text/plain
// representation instead of failing.
type SystemWriter struct {
	PlainFallback bool
}

func NewSystemWriter(plainFallback bool) *SystemWriter {
	return &SystemWriter{PlainFallback: plainFallback}
}
