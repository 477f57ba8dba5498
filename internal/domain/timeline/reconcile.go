package timeline

import (
	"fmt"
	"math"

	"github.com/forPelevin/narrashort/internal/types"
)

// Epsilon absorbs float rounding so an audio track that is an exact multiple
// of the clip length does not earn an extra loop.
const Epsilon = 0.001

// maxLoops bounds the loop count handed to the renderer.
const maxLoops = 1 << 20

// Plan computes how many extra times the background clip must repeat to cover
// the voice-over, and where the composite is cut.
func Plan(videoSec, audioSec float64) (types.DurationPlan, error) {
	if !finite(videoSec) || videoSec <= Epsilon {
		return types.DurationPlan{}, fmt.Errorf("%w: video duration %v must be finite and greater than %v s", types.ErrPrecondition, videoSec, Epsilon)
	}
	if !finite(audioSec) || audioSec <= 0 {
		return types.DurationPlan{}, fmt.Errorf("%w: audio duration %v must be finite and > 0", types.ErrPrecondition, audioSec)
	}

	total := math.Floor((audioSec + videoSec - Epsilon) / videoSec)
	if total-1 > maxLoops {
		return types.DurationPlan{}, fmt.Errorf("%w: %.0f loops of a %.3fs clip needed for %.3fs of audio", types.ErrPrecondition, total-1, videoSec, audioSec)
	}
	loops := int(total) - 1
	if loops < 0 {
		loops = 0
	}
	return types.DurationPlan{
		VideoDurationSeconds: videoSec,
		AudioDurationSeconds: audioSec,
		LoopCount:            loops,
		TruncateAtSeconds:    audioSec,
	}, nil
}

// RenderParams assembles the renderer invocation for a plan.
func RenderParams(p types.DurationPlan, videoPath, audioPath, subtitlePath, outPath string) types.RenderParams {
	return types.RenderParams{
		VideoPath:    videoPath,
		AudioPath:    audioPath,
		SubtitlePath: subtitlePath,
		LoopCount:    p.LoopCount,
		TruncateAt:   p.TruncateAtSeconds,
		OutputPath:   outPath,
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
