package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Transcoder converts an uploaded video into an HLS rendition and returns
// the URL of the resulting playlist.
type Transcoder interface {
	TranscodeToHLS(ctx context.Context, sourceURL, jobKey string) (playlistURL string, err error)
}

// FFmpegTranscoder shells out to ffmpeg. Output segments land under
// <mediaRoot>/hls/<jobKey>/ and are served statically under
// <publicBaseURL>/media/hls/<jobKey>/.
type FFmpegTranscoder struct {
	FFmpegPath    string
	MediaRoot     string
	PublicBaseURL string
}

func NewFFmpegTranscoder(ffmpegPath, mediaRoot, publicBaseURL string) *FFmpegTranscoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegTranscoder{
		FFmpegPath:    ffmpegPath,
		MediaRoot:     mediaRoot,
		PublicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (t *FFmpegTranscoder) TranscodeToHLS(ctx context.Context, sourceURL, jobKey string) (string, error) {
	// Job key sadrzi ':' pa ga sanitiziramo za path
	dirName := strings.ReplaceAll(jobKey, ":", "_")
	outDir := filepath.Join(t.MediaRoot, "hls", dirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	playlist := filepath.Join(outDir, "index.m3u8")
	source := t.resolveSource(sourceURL)

	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-i", source,
		"-codec:v", "libx264",
		"-codec:a", "aac",
		"-hls_time", "6",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(outDir, "segment_%03d.ts"),
		"-y",
		playlist,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(outDir)
		return "", fmt.Errorf("ffmpeg: %w: %s", err, tail(string(out), 512))
	}

	return fmt.Sprintf("%s/media/hls/%s/index.m3u8", t.PublicBaseURL, dirName), nil
}

// resolveSource maps URLs under our own public base back to local paths so
// ffmpeg reads from disk instead of looping through HTTP.
func (t *FFmpegTranscoder) resolveSource(sourceURL string) string {
	prefix := t.PublicBaseURL + "/media/"
	if strings.HasPrefix(sourceURL, prefix) {
		return filepath.Join(t.MediaRoot, strings.TrimPrefix(sourceURL, prefix))
	}
	return sourceURL
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
