package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"lulu/internal/media"
)

const redrawInterval = 100 * time.Millisecond

// Progress renders a download progress bar on a terminal. It is an
// io.Writer that counts the bytes passing through it; on anything that is
// not a terminal it stays silent.
type Progress struct {
	out     io.Writer
	label   string
	total   int64
	done    int64
	bar     progress.Model
	enabled bool
	drawn   time.Time
}

// NewProgress creates a progress bar for a transfer of total bytes.
// total may be 0 or media.InfiniteSize when unknown.
func NewProgress(out io.Writer, label string, total int64) *Progress {
	p := &Progress{
		out:   out,
		label: label,
		total: total,
	}

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p
	}

	width := 40
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols-40 < width {
		width = max(cols-40, 10)
	}

	p.enabled = true
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(width))
	return p
}

// Write counts n bytes as transferred.
func (p *Progress) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if p.enabled && time.Since(p.drawn) >= redrawInterval {
		p.draw()
	}
	return len(b), nil
}

// Done returns the number of bytes counted so far.
func (p *Progress) Done() int64 {
	return p.done
}

// Finish draws the final state and ends the line.
func (p *Progress) Finish() {
	if !p.enabled {
		return
	}
	p.draw()
	fmt.Fprintln(p.out)
}

func (p *Progress) known() bool {
	return p.total > 0 && p.total != media.InfiniteSize
}

func (p *Progress) draw() {
	p.drawn = time.Now()

	if !p.known() {
		fmt.Fprintf(p.out, "\r%s %s", p.label, humanize.IBytes(uint64(p.done)))
		return
	}

	pct := float64(p.done) / float64(p.total)
	if pct > 1 {
		pct = 1
	}
	fmt.Fprintf(p.out, "\r%s %s %s/%s", p.label, p.bar.ViewAs(pct),
		humanize.IBytes(uint64(p.done)), humanize.IBytes(uint64(p.total)))
}
