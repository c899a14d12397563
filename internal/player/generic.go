package player

// Generic implements the Player interface for players like iina and celluloid
// that accept mpv-compatible arguments.
type Generic struct {
	name      string
	userAgent string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool { return available(g.name) }

// Play launches the generic player.
func (g *Generic) Play(urls []string, title string) error {
	return run(g.name, g.args(urls, title))
}

func (g *Generic) args(urls []string, title string) []string {
	// Both iina and celluloid accept mpv-style flags
	args := []string{"--force-media-title=" + title}
	if g.userAgent != "" {
		args = append(args, "--user-agent="+g.userAgent)
	}
	return append(args, urls...)
}
