package ui

import (
	"bytes"
	"strings"
	"testing"

	"lulu/internal/media"
)

func TestTypeName(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"video/mp4", "MPEG-4 video (video/mp4)"},
		{"mp4", "MPEG-4 video (mp4)"},
		{"JPG", "JPEG image (JPG)"},
		{"application/vnd.apple.mpegurl", "M3U8 playlist (application/vnd.apple.mpegurl)"},
		{"application/zip", "Unknown type (application/zip)"},
		{"", "Unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := TypeName(tt.kind); got != tt.want {
				t.Errorf("TypeName(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "Unknown"},
		{media.InfiniteSize, "Unknown"},
		{512, "512 B (512 Bytes)"},
		{1536, "1.5 KiB (1536 Bytes)"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestTextPrinter(t *testing.T) {
	var buf bytes.Buffer
	NewTextPrinter(&buf).PrintInfo("example.com", "Clip", "mp4", 2048)

	out := buf.String()
	for _, want := range []string{"Site:", "example.com", "Clip", "MPEG-4 video (mp4)", "2.0 KiB (2048 Bytes)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewJSONPrinter(&buf)
	p.PrintInfo("example.com", "Clip", "mp4", 10)
	p.PrintInfo("example.com", "Live", "application/x-mpegurl", media.InfiniteSize)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != `{"site":"example.com","title":"Clip","type":"mp4","size":10}` {
		t.Errorf("line[0] = %s", lines[0])
	}
	if lines[1] != `{"site":"example.com","title":"Live","type":"application/x-mpegurl","size":null}` {
		t.Errorf("line[1] = %s", lines[1])
	}
}

func TestProgressSilentOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "clip.mp4", 100)
	p.Write(make([]byte, 60))
	p.Write(make([]byte, 40))
	p.Finish()

	if p.Done() != 100 {
		t.Errorf("Done() = %d, want 100", p.Done())
	}
	if buf.Len() != 0 {
		t.Errorf("progress wrote %q to a non-terminal", buf.String())
	}
}

func TestNumbered(t *testing.T) {
	got := numbered([]string{"first", "tab\there"})
	want := "0\tfirst\n1\ttab here\n"
	if got != want {
		t.Errorf("numbered() = %q, want %q", got, want)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    int
		wantErr bool
	}{
		{"first", "0\tfirst\n", 0, false},
		{"second", "1\tsecond item\n", 1, false},
		{"empty", "\n", -1, true},
		{"out of range", "5\tx\n", -1, true},
		{"garbage", "abc\tx\n", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.out, 2)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSelection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseSelection() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSpinnerSilentOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "remuxing")
	s.Start()
	if s.Active() {
		t.Error("spinner should not run on a non-terminal")
	}
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("spinner wrote %q to a non-terminal", buf.String())
	}
}
