// Package player plays discovered media instead of downloading it.
// All player invocations use exec.Command with explicit argument slices;
// URLs scraped from arbitrary pages never reach a shell.
package player

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback of urls as one title and blocks until the player exits.
	Play(urls []string, title string) error

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name. userAgent is sent with every request the
// player makes.
func New(name, userAgent string) (Player, error) {
	switch strings.ToLower(name) {
	case "mpv":
		return &MPV{userAgent: userAgent}, nil
	case "vlc":
		return &VLC{userAgent: userAgent}, nil
	case "iina", "celluloid":
		return &Generic{name: strings.ToLower(name), userAgent: userAgent}, nil
	default:
		return nil, fmt.Errorf("unsupported player %q", name)
	}
}

func available(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}

// run starts bin attached to the terminal. A non-zero exit is how players
// report a user quit, so it is not an error.
func run(bin string, args []string) error {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return fmt.Errorf("running %s: %w", bin, err)
	}
	return nil
}
