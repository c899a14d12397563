package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner shows activity for work without measurable progress, such as an
// ffmpeg remux. Like Progress it stays silent off a terminal.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a stopped spinner labelled with label.
func NewSpinner(out io.Writer, label string) *Spinner {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return &Spinner{}
	}

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriterFile(f))
	s.Suffix = " " + label
	return &Spinner{s: s}
}

// Start begins animating.
func (s *Spinner) Start() {
	if s.s != nil {
		s.s.Start()
	}
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	if s.s != nil {
		s.s.Stop()
	}
}

// Active reports whether the spinner is drawing.
func (s *Spinner) Active() bool {
	return s.s != nil && s.s.Active()
}
