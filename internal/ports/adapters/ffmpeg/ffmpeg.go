package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/narrashort/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, types.ExternalFailure("ffprobe duration", b, err)
	}
	return parseDuration(string(b))
}

// Render loops the background clip under the voice-over, burns the subtitle
// track and cuts the output at the plan's truncation point.
func (a *Adapter) Render(ctx context.Context, p types.RenderParams) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg, renderArgs(p)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.ExternalFailure("ffmpeg render", b, err)
	}
	return nil
}

func renderArgs(p types.RenderParams) []string {
	return []string{
		"-y",
		"-stream_loop", strconv.Itoa(p.LoopCount),
		"-i", p.VideoPath,
		"-i", p.AudioPath,
		"-filter_complex", "[0:v]subtitles=" + escapeFilterPath(p.SubtitlePath) + ":force_style='Alignment=2'[v]",
		"-map", "[v]",
		"-map", "1:a",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-t", fmtSeconds(p.TruncateAt),
		p.OutputPath,
	}
}

func parseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

// escapeFilterPath quotes a path for use inside a filtergraph option value.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	p = strings.ReplaceAll(p, ",", "\\,")
	p = strings.ReplaceAll(p, "[", "\\[")
	p = strings.ReplaceAll(p, "]", "\\]")
	return p
}
