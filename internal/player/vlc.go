package player

// VLC implements the Player interface for VLC media player.
type VLC struct {
	userAgent string
}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool { return available("vlc") }

// Play launches VLC with urls queued as a playlist.
func (v *VLC) Play(urls []string, title string) error {
	return run("vlc", v.args(urls, title))
}

func (v *VLC) args(urls []string, title string) []string {
	args := []string{
		"--meta-title", title,
		"--play-and-exit",
	}
	if v.userAgent != "" {
		args = append(args, "--http-user-agent", v.userAgent)
	}
	args = append(args, "--")
	return append(args, urls...)
}
