package usecase

import "fmt"

// Stage is one step of the linear production chain. Each stage requires the
// artifacts of every stage before it.
type Stage int

const (
	StageSelectMedia Stage = iota
	StageGenerateScript
	StageSynthesizeVoice
	StageTranscribe
	StageBuildSubtitles
	StageReconcile
	StageRender
)

var stageNames = [...]string{
	StageSelectMedia:     "select-media",
	StageGenerateScript:  "generate-script",
	StageSynthesizeVoice: "synthesize-voice",
	StageTranscribe:      "transcribe",
	StageBuildSubtitles:  "build-subtitles",
	StageReconcile:       "reconcile",
	StageRender:          "render",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Stages lists every stage in execution order.
func Stages() []Stage {
	out := make([]Stage, len(stageNames))
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

// Outcome is either Success(artifact) or Stopped(reason).
type Outcome struct {
	Stage    Stage
	Artifact string
	Reason   string
	Stopped  bool
	Err      error
}

func success(s Stage, artifact string) Outcome {
	return Outcome{Stage: s, Artifact: artifact}
}

func stopped(s Stage, err error) Outcome {
	return Outcome{Stage: s, Reason: err.Error(), Stopped: true, Err: err}
}
