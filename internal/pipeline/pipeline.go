package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/forPelevin/narrashort/internal/ports"
	"github.com/forPelevin/narrashort/internal/ports/adapters/clips"
	"github.com/forPelevin/narrashort/internal/ports/adapters/elevenlabs"
	"github.com/forPelevin/narrashort/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/narrashort/internal/ports/adapters/ollama"
	"github.com/forPelevin/narrashort/internal/ports/adapters/openrouter"
	"github.com/forPelevin/narrashort/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/narrashort/internal/types"
	"github.com/forPelevin/narrashort/internal/usecase"
)

// Script writer backends.
const (
	BackendOllama     = "ollama"
	BackendOpenRouter = "openrouter"
)

// Transcription backends.
const (
	ASRElevenLabs = "elevenlabs"
	ASRWhisperCPP = "whispercpp"
)

const ManifestFile = "manifest.json"

type Config struct {
	Topic     string
	Language  string
	VideosDir string
	OutDir    string
	// Seed fixes clip selection; zero picks a random seed.
	Seed uint64
	// StageTimeout bounds each external call. Zero disables the bound.
	StageTimeout time.Duration
	Logger       *slog.Logger

	FFmpegPath  string
	FFprobePath string

	ScriptBackend string
	OllamaBin     string
	OllamaModel   string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	VoiceID           string
	TTSModel          string
	OutputFormat      string
	STTModel          string

	ASRBackend   string
	WhisperBin   string
	WhisperModel string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return errors.New("topic is empty")
	}
	if c.VideosDir == "" {
		return errors.New("videos dir is empty")
	}
	if c.StageTimeout < 0 {
		return fmt.Errorf("stage timeout must be >= 0")
	}
	if c.ElevenLabsAPIKey == "" {
		return errors.New("ELEVENLABS_API_KEY is required")
	}
	if c.VoiceID == "" {
		return errors.New("voice id is required")
	}
	switch c.ASRBackend {
	case "", ASRElevenLabs:
	case ASRWhisperCPP:
		if c.WhisperModel == "" {
			return errors.New("whisper model path is required for the whispercpp backend")
		}
	default:
		return fmt.Errorf("unknown transcription backend %q (want %s or %s)", c.ASRBackend, ASRElevenLabs, ASRWhisperCPP)
	}
	switch c.ScriptBackend {
	case "", BackendOllama:
		return nil
	case BackendOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return errors.New("OPENROUTER_API_KEY is required for the openrouter backend")
		}
		return openrouter.ValidateBaseURL(
			c.OpenRouterBaseURL,
			c.OpenRouterAllowedHosts,
		)
	default:
		return fmt.Errorf("unknown script backend %q (want %s or %s)", c.ScriptBackend, BackendOllama, BackendOpenRouter)
	}
}

// Run wires the adapters and executes one production run. A stopped run is
// reported through the manifest, not the error.
func Run(ctx context.Context, cfg Config) (types.Manifest, error) {
	voice := elevenlabs.New(elevenlabs.Options{
		APIKey:       cfg.ElevenLabsAPIKey,
		BaseURL:      cfg.ElevenLabsBaseURL,
		VoiceID:      cfg.VoiceID,
		TTSModel:     cfg.TTSModel,
		OutputFormat: cfg.OutputFormat,
		STTModel:     cfg.STTModel,
		Timeout:      cfg.StageTimeout,
	})
	deps := usecase.Deps{
		Clips:  clips.New(cfg.VideosDir, cfg.Seed),
		Video:  ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Writer: newScriptWriter(cfg),
		Speech: voice,
		ASR:    voice,
	}
	if cfg.ASRBackend == ASRWhisperCPP {
		deps.ASR = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.FFmpegPath)
	}
	return runWith(ctx, cfg, deps, time.Now().UTC())
}

func newScriptWriter(cfg Config) ports.ScriptWriter {
	if cfg.ScriptBackend == BackendOpenRouter {
		return openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	}
	return ollama.New(cfg.OllamaBin, cfg.OllamaModel)
}

func runWith(ctx context.Context, cfg Config, deps usecase.Deps, now time.Time) (types.Manifest, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runID := uuid.NewString()
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.Topic, runID, now)
	log.Debug("preparing workspace", "run_id", runID)
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return types.Manifest{}, err
	}
	log.Info("output run dir", "dir", runOutDir)

	res, runErr := usecase.New(deps).Run(ctx, usecase.Input{
		Topic:        cfg.Topic,
		Language:     cfg.Language,
		OutDir:       runOutDir,
		StageTimeout: cfg.StageTimeout,
		Logger:       log,
	})

	m := buildManifest(runID, cfg.Topic, now, res)
	m.FinishedAt = time.Now().UTC()
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return m, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, ManifestFile)
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return m, errors.Join(runErr, err)
	}
	log.Info("manifest written", "stages", len(m.Stages), "path", manifestPath)
	return m, runErr
}

func buildManifest(runID, topic string, started time.Time, res usecase.Result) types.Manifest {
	m := types.Manifest{
		RunID:     runID,
		Topic:     topic,
		StartedAt: started,
		Plan:      res.Plan,
		Output:    res.Output,
	}
	for _, o := range res.Outcomes {
		m.Stages = append(m.Stages, types.ManifestStage{
			Stage:    o.Stage.String(),
			Artifact: o.Artifact,
			Reason:   o.Reason,
			Stopped:  o.Stopped,
		})
	}
	if st, ok := res.Stopped(); ok {
		m.StoppedAt = st.Stage.String()
		m.StopReason = st.Reason
	}
	return m
}

func buildRunOutDir(outRoot, topic, runID string, now time.Time) string {
	name := normalizePathSegment(topic)
	if len(name) > 48 {
		name = strings.TrimRight(truncateRunes(name, 48), "-")
	}
	if name == "" {
		name = "short"
	}
	ts := now.UTC().Format("20060102-150405Z")
	suffix := hash(runID)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.ClipSource = (*clips.Adapter)(nil)
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ScriptWriter = (*ollama.Adapter)(nil)
var _ ports.ScriptWriter = (*openrouter.Adapter)(nil)
var _ ports.Speech = (*elevenlabs.Adapter)(nil)
var _ ports.ASR = (*elevenlabs.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
