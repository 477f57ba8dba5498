package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "narrashort.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_OverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
topic: New discoveries in the pyramids of Giza
language: Greek
stage_timeout: 90s
script:
  backend: openrouter
  model: z-ai/glm-4.5-air:free
voice:
  voice_id: JBFqnCBsd6RMkjVDRZzb
transcribe:
  backend: whispercpp
  whisper_model: models/ggml-base.bin
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Topic != "New discoveries in the pyramids of Giza" || cfg.Language != "Greek" {
		t.Fatalf("unexpected topic/language: %+v", cfg)
	}
	if cfg.StageTimeout != 90*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.StageTimeout)
	}
	if cfg.Script.Backend != "openrouter" || cfg.Script.OllamaBin != "ollama" {
		t.Fatalf("unexpected script config: %+v", cfg.Script)
	}
	if cfg.Voice.VoiceID != "JBFqnCBsd6RMkjVDRZzb" || cfg.Voice.OutputFormat != "mp3_44100_128" {
		t.Fatalf("unexpected voice config: %+v", cfg.Voice)
	}
	if cfg.Transcribe.Backend != "whispercpp" || cfg.Transcribe.WhisperBin != "whisper-cli" || cfg.Transcribe.WhisperModel != "models/ggml-base.bin" {
		t.Fatalf("unexpected transcribe config: %+v", cfg.Transcribe)
	}
	if cfg.VideosDir != "videos" || cfg.FFmpeg.ProbePath != "ffprobe" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoad_EmptyPathAndEmptyFile(t *testing.T) {
	for _, p := range []string{"", writeConfig(t, "")} {
		cfg, err := Load(p)
		if err != nil {
			t.Fatalf("Load(%q): %v", p, err)
		}
		if cfg != Default() {
			t.Fatalf("Load(%q) = %+v, want defaults", p, cfg)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	_, err := Load(writeConfig(t, "topci: typo\n"))
	if err == nil || !strings.Contains(err.Error(), "topci") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if _, err := Load(writeConfig(t, "stage_timeout: soon\n")); err == nil {
		t.Fatalf("expected duration parse error")
	}
}
