package ports

import (
	"context"

	"github.com/forPelevin/narrashort/internal/types"
)

type ClipSource interface {
	Pick(ctx context.Context) (string, error)
}

type VideoTool interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	Render(ctx context.Context, p types.RenderParams) error
}

type ScriptWriter interface {
	Write(ctx context.Context, prompt string) (string, error)
}

type Speech interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

type ASR interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcript, error)
}
