package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "narrashort [topic]",
		Short:        "Produce a narrated short with karaoke subtitles from a topic and a folder of clips",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	f := root.Flags()
	f.String("config", "", "YAML config file")
	f.String("videos", "videos", "Folder with background .mp4 clips")
	f.String("out", "out", "Output directory")
	f.String("language", "English", "Narration language")
	f.String("backend", "ollama", "Script writer: ollama or openrouter")
	f.String("model", "", "Script writer model (backend default when empty)")
	f.String("voice", "", "ElevenLabs voice id")
	f.String("asr", "elevenlabs", "Transcription: elevenlabs or whispercpp")
	f.String("whisper-model", "", "whisper.cpp model path (whispercpp only)")
	f.Uint64("seed", 0, "Clip selection seed, 0 picks at random")
	f.Duration("timeout", 10*time.Minute, "Timeout for each external call")
	f.Bool("strict", false, "Exit non-zero when the pipeline stops early")
	f.BoolP("verbose", "v", false, "Debug logging")
	f.BoolP("quiet", "q", false, "Log errors only")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Hidden tool overrides
	f.String("ffmpeg", "ffmpeg", "ffmpeg binary")
	f.String("ffprobe", "ffprobe", "ffprobe binary")
	_ = f.MarkHidden("ffmpeg")
	_ = f.MarkHidden("ffprobe")

	return root
}
