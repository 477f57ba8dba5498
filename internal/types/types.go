package types

import (
	"encoding/json"
	"time"
)

const (
	KindWord       = "word"
	KindSpacing    = "spacing"
	KindAudioEvent = "audio_event"
)

type Transcript struct {
	LanguageCode string           `json:"language_code,omitempty"`
	Text         string           `json:"text,omitempty"`
	Words        []TranscriptWord `json:"words"`
}

// TranscriptWord is one ASR entry. Kind is "word" for spoken words; spacing and
// audio events carry other kinds and never produce subtitles.
type TranscriptWord struct {
	Text  string  `json:"text"`
	Kind  string  `json:"type"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	// MissingTimes is set when decoded JSON lacked start or end, or had null.
	MissingTimes bool `json:"-"`
}

func (w *TranscriptWord) UnmarshalJSON(b []byte) error {
	var raw struct {
		Text  string   `json:"text"`
		Kind  string   `json:"type"`
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*w = TranscriptWord{Text: raw.Text, Kind: raw.Kind, MissingTimes: raw.Start == nil || raw.End == nil}
	if raw.Start != nil {
		w.Start = *raw.Start
	}
	if raw.End != nil {
		w.End = *raw.End
	}
	return nil
}

func (w TranscriptWord) IsWord() bool { return w.Kind == KindWord }

type SubtitleEvent struct {
	Start           float64
	End             float64
	StartTime       string
	EndTime         string
	HighlightCentis int
	Text            string
}

type DurationPlan struct {
	VideoDurationSeconds float64 `json:"video_duration_sec"`
	AudioDurationSeconds float64 `json:"audio_duration_sec"`
	LoopCount            int     `json:"loop_count"`
	TruncateAtSeconds    float64 `json:"truncate_at_sec"`
}

type RenderParams struct {
	VideoPath    string
	AudioPath    string
	SubtitlePath string
	LoopCount    int
	TruncateAt   float64
	OutputPath   string
}

type Manifest struct {
	RunID      string          `json:"run_id"`
	Topic      string          `json:"topic"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Stages     []ManifestStage `json:"stages"`
	Plan       *DurationPlan   `json:"plan,omitempty"`
	Output     string          `json:"output,omitempty"`
	StoppedAt  string          `json:"stopped_at,omitempty"`
	StopReason string          `json:"stop_reason,omitempty"`
}

type ManifestStage struct {
	Stage    string `json:"stage"`
	Artifact string `json:"artifact,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Stopped  bool   `json:"stopped,omitempty"`
}
