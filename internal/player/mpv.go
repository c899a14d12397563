package player

// MPV implements the Player interface for mpv.
type MPV struct {
	userAgent string
}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool { return available("mpv") }

// Play launches mpv. Several URLs are parts of one file and are played
// back to back as a single title.
func (m *MPV) Play(urls []string, title string) error {
	return run("mpv", m.args(urls, title))
}

func (m *MPV) args(urls []string, title string) []string {
	args := []string{
		"--force-media-title=" + title,
		"--really-quiet",
	}
	if m.userAgent != "" {
		args = append(args, "--user-agent="+m.userAgent)
	}
	if len(urls) > 1 {
		args = append(args, "--merge-files")
	}
	// end of options: a scraped URL starting with "-" stays a URL
	args = append(args, "--")
	return append(args, urls...)
}
