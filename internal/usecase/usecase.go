package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/narrashort/internal/domain/script"
	"github.com/forPelevin/narrashort/internal/domain/subtitles"
	"github.com/forPelevin/narrashort/internal/domain/timeline"
	"github.com/forPelevin/narrashort/internal/ports"
	"github.com/forPelevin/narrashort/internal/types"
)

// Artifact file names inside the run directory.
const (
	ScriptFile     = "script.txt"
	VoiceFile      = "voice.mp3"
	TranscriptFile = "transcript.json"
	SubtitlesFile  = "subtitles.ass"
	OutputFile     = "final.mp4"
)

type Deps struct {
	Clips  ports.ClipSource
	Video  ports.VideoTool
	Writer ports.ScriptWriter
	Speech ports.Speech
	ASR    ports.ASR
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Topic    string
	Language string
	OutDir   string
	// StageTimeout bounds every external call; zero disables it.
	StageTimeout time.Duration
	Logger       *slog.Logger
}

type Result struct {
	Outcomes    []Outcome
	Plan        *types.DurationPlan
	Output      string
	Diagnostics []subtitles.Diagnostic
}

// Stopped reports the stage that ended the run early, if any.
func (r Result) Stopped() (Outcome, bool) {
	if n := len(r.Outcomes); n > 0 && r.Outcomes[n-1].Stopped {
		return r.Outcomes[n-1], true
	}
	return Outcome{}, false
}

// run carries the artifacts handed from one stage to the next.
type run struct {
	in  Input
	log *slog.Logger

	videoPath  string
	videoSec   float64
	text       string
	audioPath  string
	transcript types.Transcript
	assPath    string
	plan       types.DurationPlan
}

// Run executes the chain. A failing stage records a Stopped outcome and ends
// the run without an error; only cancellation of ctx is returned as one.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := in.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &run{in: in, log: log}
	var res Result

	for _, stage := range Stages() {
		fn := u.handler(stage)
		log.Info("stage started", "stage", stage)
		artifact, err := u.runStage(ctx, in.StageTimeout, func(sctx context.Context) (string, error) {
			return fn(sctx, r, &res)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, fmt.Errorf("%s: %w", stage, ctxErr)
			}
			out := stopped(stage, err)
			res.Outcomes = append(res.Outcomes, out)
			log.Warn("pipeline stopped", "stage", stage, "reason", out.Reason)
			return res, nil
		}
		res.Outcomes = append(res.Outcomes, success(stage, artifact))
		log.Info("stage finished", "stage", stage, "artifact", artifact)
	}
	res.Output = r.outputPath()
	return res, nil
}

type stageFunc func(context.Context, *run, *Result) (string, error)

func (u Usecase) handler(s Stage) stageFunc {
	switch s {
	case StageSelectMedia:
		return u.selectMedia
	case StageGenerateScript:
		return u.generateScript
	case StageSynthesizeVoice:
		return u.synthesizeVoice
	case StageTranscribe:
		return u.transcribe
	case StageBuildSubtitles:
		return u.buildSubtitles
	case StageReconcile:
		return u.reconcile
	default:
		return u.render
	}
}

func (u Usecase) runStage(ctx context.Context, timeout time.Duration, fn func(context.Context) (string, error)) (string, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	artifact, err := fn(sctx)
	if err != nil && ctx.Err() == nil && errors.Is(sctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: timed out after %s: %v", types.ErrExternalProcess, timeout, err)
	}
	return artifact, err
}

func (r *run) outputPath() string { return filepath.Join(r.in.OutDir, OutputFile) }

func (u Usecase) selectMedia(ctx context.Context, r *run, _ *Result) (string, error) {
	path, err := u.d.Clips.Pick(ctx)
	if err != nil {
		return "", err
	}
	sec, err := u.d.Video.ProbeDuration(ctx, path)
	if err != nil {
		return "", err
	}
	r.videoPath, r.videoSec = path, sec
	return path, nil
}

func (u Usecase) generateScript(ctx context.Context, r *run, _ *Result) (string, error) {
	words := script.TargetWordCount(r.videoSec)
	text, err := u.d.Writer.Write(ctx, script.Prompt(r.in.Topic, r.in.Language, words))
	if err != nil {
		return "", err
	}
	text = script.Clean(text)
	if text == "" {
		return "", types.Missing("script writer returned no text")
	}
	r.text = text
	p := filepath.Join(r.in.OutDir, ScriptFile)
	return p, writeFile(p, []byte(text+"\n"))
}

func (u Usecase) synthesizeVoice(ctx context.Context, r *run, _ *Result) (string, error) {
	p := filepath.Join(r.in.OutDir, VoiceFile)
	if err := u.d.Speech.Synthesize(ctx, r.text, p); err != nil {
		return "", err
	}
	if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
		return "", types.Missing("voice-over %s was not produced", p)
	}
	r.audioPath = p
	return p, nil
}

func (u Usecase) transcribe(ctx context.Context, r *run, _ *Result) (string, error) {
	tr, err := u.d.ASR.Transcribe(ctx, r.audioPath)
	if err != nil {
		return "", err
	}
	r.transcript = tr
	b, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}
	p := filepath.Join(r.in.OutDir, TranscriptFile)
	return p, writeFile(p, b)
}

func (u Usecase) buildSubtitles(_ context.Context, r *run, res *Result) (string, error) {
	track, err := subtitles.Build(&r.transcript)
	res.Diagnostics = track.Diagnostics
	for _, d := range track.Diagnostics {
		r.log.Warn("subtitle word adjusted", "index", d.Index, "word", d.Word, "reason", d.Reason, "skipped", d.Skipped)
	}
	if err != nil {
		return "", err
	}
	p := filepath.Join(r.in.OutDir, SubtitlesFile)
	if err := writeFile(p, []byte(track.Markup())); err != nil {
		return "", err
	}
	r.assPath = p
	return p, nil
}

func (u Usecase) reconcile(ctx context.Context, r *run, res *Result) (string, error) {
	audioSec, err := u.d.Video.ProbeDuration(ctx, r.audioPath)
	if err != nil {
		return "", err
	}
	plan, err := timeline.Plan(r.videoSec, audioSec)
	if err != nil {
		return "", err
	}
	r.plan = plan
	res.Plan = &plan
	return fmt.Sprintf("loops=%d truncate=%.3fs", plan.LoopCount, plan.TruncateAtSeconds), nil
}

func (u Usecase) render(ctx context.Context, r *run, _ *Result) (string, error) {
	out := r.outputPath()
	p := timeline.RenderParams(r.plan, r.videoPath, r.audioPath, r.assPath, out)
	if err := u.d.Video.Render(ctx, p); err != nil {
		return "", err
	}
	return out, nil
}

func writeFile(path string, b []byte) error {
	return os.WriteFile(path, b, 0o644)
}
