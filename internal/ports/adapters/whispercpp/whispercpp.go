package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/narrashort/internal/types"
)

// Adapter transcribes locally with the whisper.cpp CLI. It is the offline
// alternative to the hosted speech-to-text service.
type Adapter struct {
	bin    string
	model  string
	ffmpeg string
}

func New(binPath, modelPath, ffmpegPath string) *Adapter {
	if binPath == "" {
		binPath = "whisper-cli"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{bin: binPath, model: modelPath, ffmpeg: ffmpegPath}
}

// Transcribe resamples audioPath to 16 kHz mono WAV next to it and runs
// whisper.cpp with one word per segment.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	wavPath := base + ".16k.wav"
	conv := exec.CommandContext(ctx, a.ffmpeg,
		"-y", "-v", "error",
		"-i", audioPath,
		"-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le",
		wavPath,
	)
	if b, err := conv.CombinedOutput(); err != nil {
		return types.Transcript{}, types.ExternalFailure("ffmpeg resample", b, err)
	}
	defer os.Remove(wavPath)

	outPrefix := base + ".whisper"
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"-ml", "1",
		"-sow",
		"-np",
	}
	b, err := exec.CommandContext(ctx, a.bin, args...).CombinedOutput()
	if err != nil {
		return types.Transcript{}, types.ExternalFailure("whisper.cpp", b, err)
	}
	defer os.Remove(outPrefix + ".json")

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, types.ExternalFailure("whisper.cpp output", b, err)
	}
	return parseOutput(jb)
}

type output struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseOutput maps whisper.cpp JSON segments (millisecond offsets) to
// transcript words. Bracketed segments such as [BLANK_AUDIO] become audio
// events.
func parseOutput(b []byte) (types.Transcript, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("decode whisper.cpp output: %w", err)
	}
	tr := types.Transcript{LanguageCode: out.Result.Language, Words: []types.TranscriptWord{}}
	var spoken []string
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		kind := types.KindWord
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			kind = types.KindAudioEvent
		} else {
			spoken = append(spoken, text)
		}
		tr.Words = append(tr.Words, types.TranscriptWord{
			Text:  text,
			Kind:  kind,
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
		})
	}
	tr.Text = strings.Join(spoken, " ")
	return tr, nil
}
