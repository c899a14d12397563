package download

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lulu/internal/httputil"
	"lulu/internal/media"
	"lulu/internal/ui"
)

// DownloadStream remuxes a segmented stream into outputDir/title.ext with ffmpeg.
func (d *Downloader) DownloadStream(rawURL, title, ext, outputDir string) error {
	ffmpegPath, err := exec.LookPath(d.ffmpeg)
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	input, err := d.preflight(rawURL)
	if err != nil {
		return err
	}

	absDir, err := prepareDir(outputDir)
	if err != nil {
		return err
	}

	outputPath, err := httputil.SafeDownloadPath(absDir, filename(title, ext))
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	args := streamArgs(d.client.Headers().Get("User-Agent"), input, title, outputPath)

	cmd := exec.Command(ffmpegPath, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Fprintf(os.Stderr, "Downloading to: %s\n", outputPath)

	spin := ui.NewSpinner(d.progress, filepath.Base(outputPath))
	spin.Start()
	err = cmd.Run()
	spin.Stop()

	if err != nil {
		// Clean up partial download on failure
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg download failed: %w", err)
	}

	var size int64
	if fi, err := os.Stat(outputPath); err == nil {
		size = fi.Size()
	}
	d.complete(media.Download{URL: rawURL, Title: title, Ext: ext, Size: size, Path: outputPath})
	return nil
}

// streamArgs builds the ffmpeg remux command line. The mp4 muxer inserts
// the ADTS-to-ASC filter itself when the audio is AAC, so no bitstream
// filter is forced; forcing one breaks streams with MP3 audio.
func streamArgs(userAgent, input, title, outputPath string) []string {
	return []string{
		"-y",
		"-loglevel", "warning",
		"-user_agent", userAgent,
		"-i", input,
		"-c", "copy", // remux only
		"-metadata", fmt.Sprintf("title=%s", title),
		outputPath,
	}
}

// mergeParts concatenates parts into outputPath with ffmpeg's concat
// demuxer and removes the parts. Without ffmpeg the parts are kept and
// merged is false.
func (d *Downloader) mergeParts(parts []string, outputPath string) (merged bool, err error) {
	ffmpegPath, err := exec.LookPath(d.ffmpeg)
	if err != nil {
		d.log.Warn("ffmpeg not found, parts left unmerged", "count", len(parts))
		return false, nil
	}

	listFile, err := os.CreateTemp(filepath.Dir(outputPath), "concat-*.txt")
	if err != nil {
		return false, fmt.Errorf("creating concat list: %w", err)
	}
	defer os.Remove(listFile.Name())

	if _, err := listFile.WriteString(concatList(parts)); err != nil {
		listFile.Close()
		return false, fmt.Errorf("writing concat list: %w", err)
	}
	if err := listFile.Close(); err != nil {
		return false, fmt.Errorf("closing concat list: %w", err)
	}

	cmd := exec.Command(ffmpegPath,
		"-y",
		"-loglevel", "warning",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		outputPath,
	)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return false, fmt.Errorf("ffmpeg merge failed: %w", err)
	}

	for _, p := range parts {
		os.Remove(p)
	}
	return true, nil
}

// concatList renders the ffmpeg concat demuxer input for paths.
func concatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	return b.String()
}
