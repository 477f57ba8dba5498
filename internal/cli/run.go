package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forPelevin/narrashort/internal/config"
	"github.com/forPelevin/narrashort/internal/pipeline"
	"github.com/forPelevin/narrashort/internal/ports/adapters/openrouter"
	"github.com/spf13/cobra"
)

const defaultOpenRouterModel = "z-ai/glm-4.5-air:free"

func run(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args, os.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	strict, _ := cmd.Flags().GetBool("strict")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
	defer cancel()

	m, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	if m.StoppedAt != "" {
		if strict {
			return fmt.Errorf("stopped at %s: %s", m.StoppedAt, m.StopReason)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), m.Output)
	return nil
}

// buildConfig layers flags over the config file; secrets only come from env.
func buildConfig(cmd *cobra.Command, args []string, getenv func(string) string) (pipeline.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	file, err := config.Load(path)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}

	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if len(args) == 1 {
		file.Topic = args[0]
	}
	str("videos", &file.VideosDir)
	str("out", &file.OutDir)
	str("language", &file.Language)
	str("backend", &file.Script.Backend)
	str("model", &file.Script.Model)
	str("voice", &file.Voice.VoiceID)
	str("asr", &file.Transcribe.Backend)
	str("whisper-model", &file.Transcribe.WhisperModel)
	str("ffmpeg", &file.FFmpeg.Path)
	str("ffprobe", &file.FFmpeg.ProbePath)
	if flags.Changed("seed") {
		file.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("timeout") {
		file.StageTimeout, _ = flags.GetDuration("timeout")
	}

	verbose, _ := flags.GetBool("verbose")
	quiet, _ := flags.GetBool("quiet")

	cfg := pipeline.Config{
		Topic:        file.Topic,
		Language:     file.Language,
		VideosDir:    file.VideosDir,
		OutDir:       file.OutDir,
		Seed:         file.Seed,
		StageTimeout: file.StageTimeout,
		Logger:       newLogger(cmd.ErrOrStderr(), verbose, quiet),

		FFmpegPath:  file.FFmpeg.Path,
		FFprobePath: file.FFmpeg.ProbePath,

		ScriptBackend: file.Script.Backend,
		OllamaBin:     file.Script.OllamaBin,

		OpenRouterAPIKey:       getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:      getenvDefault(getenv, "OPENROUTER_BASE_URL", "https://openrouter.ai"),
		OpenRouterAllowedHosts: openrouter.ParseAllowedHosts(getenv("OPENROUTER_ALLOWED_HOSTS")),

		ElevenLabsAPIKey:  getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: file.Voice.BaseURL,
		VoiceID:           file.Voice.VoiceID,
		TTSModel:          file.Voice.Model,
		OutputFormat:      file.Voice.OutputFormat,
		STTModel:          file.Transcribe.Model,

		ASRBackend:   file.Transcribe.Backend,
		WhisperBin:   file.Transcribe.WhisperBin,
		WhisperModel: file.Transcribe.WhisperModel,
	}
	if cfg.ScriptBackend == pipeline.BackendOpenRouter {
		cfg.OpenRouterModel = file.Script.Model
		if cfg.OpenRouterModel == "" {
			cfg.OpenRouterModel = getenvDefault(getenv, "OPENROUTER_MODEL", defaultOpenRouterModel)
		}
	} else {
		cfg.OllamaModel = file.Script.Model
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func getenvDefault(getenv func(string) string, k, def string) string {
	v := getenv(k)
	if v == "" {
		return def
	}
	return v
}
