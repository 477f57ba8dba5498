package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk run configuration. Secrets are never read from it; they
// come from the environment.
type File struct {
	Topic        string        `yaml:"topic"`
	Language     string        `yaml:"language"`
	VideosDir    string        `yaml:"videos_dir"`
	OutDir       string        `yaml:"out_dir"`
	Seed         uint64        `yaml:"seed"`
	StageTimeout time.Duration `yaml:"stage_timeout"`

	FFmpeg     FFmpeg     `yaml:"ffmpeg"`
	Script     Script     `yaml:"script"`
	Voice      Voice      `yaml:"voice"`
	Transcribe Transcribe `yaml:"transcribe"`
}

type FFmpeg struct {
	Path      string `yaml:"path"`
	ProbePath string `yaml:"probe_path"`
}

type Script struct {
	// Backend is "ollama" or "openrouter".
	Backend   string `yaml:"backend"`
	Model     string `yaml:"model"`
	OllamaBin string `yaml:"ollama_bin"`
}

type Voice struct {
	VoiceID      string `yaml:"voice_id"`
	Model        string `yaml:"model"`
	OutputFormat string `yaml:"output_format"`
	BaseURL      string `yaml:"base_url"`
}

type Transcribe struct {
	// Backend is "elevenlabs" or "whispercpp".
	Backend      string `yaml:"backend"`
	Model        string `yaml:"model"`
	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`
}

func Default() File {
	return File{
		Language:     "English",
		VideosDir:    "videos",
		OutDir:       "out",
		StageTimeout: 10 * time.Minute,
		FFmpeg:       FFmpeg{Path: "ffmpeg", ProbePath: "ffprobe"},
		Script:       Script{Backend: "ollama", OllamaBin: "ollama"},
		Voice:        Voice{VoiceID: "20zUtLxCwVzsFDWub4sB", Model: "eleven_multilingual_v2", OutputFormat: "mp3_44100_128"},
		Transcribe:   Transcribe{Backend: "elevenlabs", Model: "scribe_v1", WhisperBin: "whisper-cli"},
	}
}

// Load reads a YAML config on top of Default. An empty path returns the
// defaults unchanged.
func Load(path string) (File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
