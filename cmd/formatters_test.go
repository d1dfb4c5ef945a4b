package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestNewOutputWriter(t *testing.T) {
	tests := []struct {
		format     string
		want       OutputFormat
		structured bool
	}{
		{"json", FormatJSON, true},
		{"yaml", FormatYAML, true},
		{"table", FormatTable, false},
		{"modern", FormatTable, false},
		{"", FormatTable, false},
	}
	for _, tt := range tests {
		w := NewOutputWriter(tt.format)
		if w.GetFormat() != tt.want || w.IsStructured() != tt.structured {
			t.Errorf("NewOutputWriter(%q) = %s structured=%v", tt.format, w.GetFormat(), w.IsStructured())
		}
	}
}

func TestOutputWriterWrite(t *testing.T) {
	data := map[string]string{"provider": "gemini"}

	tests := []struct {
		format string
		want   string
	}{
		{"json", "{\n  \"provider\": \"gemini\"\n}\n"},
		{"yaml", "provider: gemini\n"},
		{"table", ""},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		w := NewOutputWriter(tt.format)
		w.SetWriter(&buf)
		if err := w.Write(data); err != nil {
			t.Fatalf("Write(%s) error = %v", tt.format, err)
		}
		if buf.String() != tt.want {
			t.Errorf("Write(%s) = %q, want %q", tt.format, buf.String(), tt.want)
		}
	}
}

func TestTableAlignsWideRunes(t *testing.T) {
	table := NewTable("ID", "INPUT", "NOTE")
	table.AddRow("中文", "x", "end")
	table.AddRow("abc", "数学公式", "")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := []string{
		"ID    INPUT     NOTE",
		"中文  x         end",
		"abc   数学公式",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("Render() lines = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestTruncateCells(t *testing.T) {
	for _, s := range []string{"short", "一二三四五六七八九十", "mixed 中文 text that is long"} {
		got := truncateCells(s, 10)
		if w := runewidth.StringWidth(got); w > 10 {
			t.Errorf("truncateCells(%q) = %q with width %d", s, got, w)
		}
	}
	if got := truncateCells("short", 10); got != "short" {
		t.Errorf("truncateCells() changed a short string: %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(time.Time{}); got != "-" {
		t.Errorf("FormatTimestamp(zero) = %q", got)
	}
	ts := time.Date(2025, 3, 14, 15, 9, 0, 0, time.Local)
	if got := FormatTimestamp(ts); got != "2025-03-14 15:09" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
}
